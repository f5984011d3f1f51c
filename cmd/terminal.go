package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newProgress returns a byte progress bar on stderr, or nil when stderr is
// not a terminal.
func newProgress(total int64, title string) *progressbar.ProgressBar {
	if !isTerminal(os.Stderr) {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(title),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65_000_000),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// waitForEnter blocks until a line or EOF arrives on in. The prompt is only
// shown when in is a terminal.
func waitForEnter(in io.Reader, out io.Writer, prompt string) {
	if isTerminal(in) {
		fmt.Fprint(out, prompt)
	}
	_, _ = bufio.NewReader(in).ReadString('\n')
}
