package pages

import "context"

type CartPage struct {
	site *Site
}

func (p *CartPage) IsDisplayed(ctx context.Context) (bool, error) {
	res := p.site.waitText(ctx, p.site.cat.Inventory.Title, p.site.cat.Texts.CartTitle)
	return res.Converged, res.Err
}

// ItemCount - строки в корзине.
func (p *CartPage) ItemCount(ctx context.Context) (int, error) {
	return p.site.count(ctx, p.site.cat.Cart.Items)
}
