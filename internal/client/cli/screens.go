package cli

import (
	"context"
	"io"
	"os"

	"github.com/nospi-app/nospi/internal/client/tabs"
)

// stdout is where screens are rendered; tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// ShowTab selects the named tab and renders it.
func (a *App) ShowTab(ctx context.Context, name string) error {
	tab, err := tabs.ParseTab(name)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if err := a.tabs.Select(tab); err != nil {
		return err
	}

	if err := a.tabs.Render(ctx, stdout); err != nil {
		a.logger.Warn(ctx, "rendering tab failed", "tab", tab, "error", err)
		printlnFn(describeError(err))
		return err
	}
	return nil
}
