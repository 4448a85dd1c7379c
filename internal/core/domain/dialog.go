package domain

// DialogState is the visibility lifecycle of a modal form.
type DialogState string

const (
	DialogClosed  DialogState = "closed"
	DialogOpening DialogState = "opening"
	DialogOpen    DialogState = "open"
	DialogClosing DialogState = "closing"
)

// DialogMode tells the product form whether it creates or edits.
type DialogMode string

const (
	DialogAdd  DialogMode = "add"
	DialogEdit DialogMode = "edit"
)

var validDialogTransitions = map[DialogState][]DialogState{
	DialogClosed:  {DialogOpening},
	DialogOpening: {DialogOpen, DialogClosing},
	DialogOpen:    {DialogClosing},
	DialogClosing: {DialogClosed},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s DialogState) CanTransitionTo(next DialogState) bool {
	for _, allowed := range validDialogTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Dialog is driven only by explicit commands from its parent view.
type Dialog struct {
	State   DialogState
	Mode    DialogMode
	Product Product
}

// NewDialog returns a closed dialog.
func NewDialog() *Dialog {
	return &Dialog{State: DialogClosed}
}

// Open starts showing the dialog. Edit mode carries the product being edited;
// add mode starts from an empty product with the default unit.
func (d *Dialog) Open(mode DialogMode, p Product) error {
	if err := d.transition(DialogOpening); err != nil {
		return err
	}
	d.Mode = mode
	if mode == DialogAdd {
		p = Product{Unit: DefaultUnit}
	}
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
	d.Product = p
	return nil
}

// Settle completes a pending opening or closing transition.
func (d *Dialog) Settle() error {
	switch d.State {
	case DialogOpening:
		return d.transition(DialogOpen)
	case DialogClosing:
		if err := d.transition(DialogClosed); err != nil {
			return err
		}
		d.Mode = ""
		d.Product = Product{}
		return nil
	}
	return ErrInvalidDialogTransition
}

// Close starts hiding the dialog.
func (d *Dialog) Close() error {
	return d.transition(DialogClosing)
}

// Visible reports whether the form should be rendered.
func (d *Dialog) Visible() bool {
	return d.State == DialogOpening || d.State == DialogOpen
}

// Editing reports whether the dialog edits an existing product.
func (d *Dialog) Editing() bool {
	return d.Mode == DialogEdit
}

func (d *Dialog) transition(next DialogState) error {
	if !d.State.CanTransitionTo(next) {
		return ErrInvalidDialogTransition
	}
	d.State = next
	return nil
}
