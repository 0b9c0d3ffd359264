/* Package clilog sets up log15 for our command line tools.
 */
package clilog

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	log "gopkg.in/inconshreveable/log15.v2"
	"gopkg.in/inconshreveable/log15.v2/stack"
)

var levelColors = map[log.Lvl]int{
	log.LvlCrit:  35,
	log.LvlError: 31,
	log.LvlWarn:  33,
	log.LvlInfo:  32,
	log.LvlDebug: 36,
}

// Format returns a log format writing "LVL [time file:line] msg k=v ...",
// with the level colored if `color` is set.
func Format(color bool) log.Format {
	return log.FormatFunc(func(r *log.Record) []byte {
		b := &bytes.Buffer{}

		if color {
			fmt.Fprintf(b, "\x1b[%dm%s\x1b[0m", levelColors[r.Lvl], r.Lvl)
		} else {
			fmt.Fprintf(b, "%s", r.Lvl)
		}

		call := stack.Call(r.CallPC[0])
		fmt.Fprintf(b, " [%s %s:%d] %s", r.Time.Format("2006-01-02|15:04:05.000"), call, call, r.Msg)

		for i := 0; i+1 < len(r.Ctx); i += 2 {
			fmt.Fprintf(b, " %v=%v", r.Ctx[i], r.Ctx[i+1])
		}

		b.WriteByte('\n')
		return b.Bytes()
	})
}

// Handler returns a handler writing records at `level` or above to `w`
func Handler(w io.Writer, level string, color bool) (log.Handler, error) {
	lvl, err := log.LvlFromString(level)
	if err != nil {
		return nil, err
	}
	return log.LvlFilterHandler(lvl, log.StreamHandler(w, Format(color))), nil
}

// Setup points the root logger at stderr, colored if stderr is a terminal.
func Setup(level string) error {
	h, err := Handler(colorable.NewColorableStderr(), level, isatty.IsTerminal(os.Stderr.Fd()))
	if err != nil {
		return err
	}
	log.Root().SetHandler(h)
	return nil
}
