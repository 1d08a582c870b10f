package window

// WindowBuilderOption mutates the window under construction. Use the With*
// functions to create options.
type WindowBuilderOption func(w *windowImpl)

// WithName sets the window name ratio texture declarations reference.
//
// Parameters:
//   - name: the window name
//
// Returns:
//   - WindowBuilderOption: the option to apply
func WithName(name string) WindowBuilderOption {
	return func(w *windowImpl) {
		w.name = name
	}
}

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: the option to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *windowImpl) {
		w.title = title
	}
}

// WithSize sets the initial window size.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: the option to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *windowImpl) {
		w.width = width
		w.height = height
	}
}
