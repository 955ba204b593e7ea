package ports

// Navigator performs a full-page navigation. Both the forced logout redirect
// and the HTTP layer's unauthorized redirect go through it.
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }
