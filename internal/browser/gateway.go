package browser

import "context"

// NodeHandle - непрозрачная ссылка на узел, выданная SessionGateway.
// Ядро не заглядывает внутрь, только передаёт обратно в шлюз.
type NodeHandle any

// SessionGateway - всё, что ядру нужно от сессии автоматизации.
// Ошибки должны классифицироваться в ErrElementNotFound, ErrStaleReference,
// ErrNotInteractable, ErrScriptRejected и ErrGeometryUnavailable.
type SessionGateway interface {
	Resolve(ctx context.Context, loc Locator) (NodeHandle, error)
	ResolveAll(ctx context.Context, loc Locator) ([]NodeHandle, error)
	ReadText(ctx context.Context, h NodeHandle) (string, error)
	ReadAttribute(ctx context.Context, h NodeHandle, name string) (string, error)
	IsInteractable(ctx context.Context, h NodeHandle) (bool, error)
	DispatchNativeClick(ctx context.Context, h NodeHandle) error
	DispatchScriptedClick(ctx context.Context, h NodeHandle) error
	DispatchPointerClick(ctx context.Context, h NodeHandle) error
	// Release освобождает узел на стороне сессии. Повторный вызов и вызов
	// для уже отсоединённого узла безопасны.
	Release(h NodeHandle)
}

// Browser - сессия целиком: шлюз плюс навигация и ввод, которые нужны
// страничным объектам. Жизненным циклом владеет вызывающий код.
type Browser interface {
	SessionGateway
	Launch(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, loc Locator, value string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Close() error
}
