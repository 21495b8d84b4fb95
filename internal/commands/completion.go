package commands

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/mtdock"
)

// completionTimeout bounds backend calls made while the shell waits.
const completionTimeout = 2 * time.Second

// QueueIDCompleter suggests the article ids currently in the queue, as
// "id:title" pairs sorted by id. When the command has a --to flag set, only
// entries for that target language are offered.
//
// When the last typed argument starts with "-", it falls back to the
// default flag completion behavior. app is read at completion time, after
// the Before hook has opened it.
func QueueIDCompleter(app *mtdock.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app.Backend == nil {
			return
		}

		ctx, cancel := context.WithTimeout(ctx, completionTimeout)
		defer cancel()

		items, err := app.Backend.QueueStatus(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, it := range queueCompletions(items, cmd.String("to")) {
			_, _ = fmt.Fprintf(w, "%d:%s\n", it.ID, it.Title)
		}
	}
}

// queueCompletions dedupes items by id, keeps those for toLang (any when
// empty) and sorts them by id.
func queueCompletions(items []translation.QueueItem, toLang string) []translation.QueueItem {
	seen := make(map[int]bool, len(items))
	out := make([]translation.QueueItem, 0, len(items))
	for _, it := range items {
		if seen[it.ID] || (toLang != "" && it.LangTo != toLang) {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b translation.QueueItem) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
