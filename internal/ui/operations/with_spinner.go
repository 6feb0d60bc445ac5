package operations

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jvano/azure-webjobs-sdk-script/internal/ui/models/spinner"
)

type OperationFunc func() (interface{}, error)

type DisplayFunc func(result interface{})

// WithSpinner runs operation behind an animated spinner and hands the
// result to display once the operation completes. The operation runs
// on its own goroutine; its outcome is delivered to the spinner as a
// message.
func WithSpinner(message string, operation OperationFunc, display DisplayFunc) error {
	program := tea.NewProgram(spinner.New(message))

	go func() {
		result, err := operation()
		if err != nil {
			program.Send(spinner.ErrorMsg{Err: err})
			return
		}
		program.Send(spinner.ResultMsg{Result: result})
	}()

	model, err := program.Run()
	if err != nil {
		return err
	}

	final, ok := model.(spinner.Model)
	if !ok {
		return fmt.Errorf("spinner finished with unexpected model %T", model)
	}

	if final.HasError() {
		return final.GetError()
	}
	if display != nil && final.HasResult() {
		display(final.GetResult())
	}
	return nil
}
