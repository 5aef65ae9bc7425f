package browser

// jsInteractable: узел видим, включён и в его центре нет перекрывающего элемента.
const jsInteractable = `el => {
	if (!el || !el.isConnected) return false;
	const style = window.getComputedStyle(el);
	if (style.display === 'none' || style.visibility === 'hidden' || parseFloat(style.opacity) === 0) return false;
	if (el.disabled) return false;
	const rect = el.getBoundingClientRect();
	if (rect.width === 0 || rect.height === 0) return false;
	const x = rect.left + rect.width / 2;
	const y = rect.top + rect.height / 2;
	if (x < 0 || y < 0 || x > window.innerWidth || y > window.innerHeight) return false;
	const top = document.elementFromPoint(x, y);
	return !!top && (top === el || el.contains(top));
}`

const jsClick = `el => { el.click(); }`

// asFunction переводит стрелочную функцию от элемента в функцию от this,
// как требует Runtime.callFunctionOn.
func asFunction(arrow string) string {
	return "function() { return (" + arrow + ")(this); }"
}
