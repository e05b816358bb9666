// Dumps the chat store as a table: go run ./tools -db ./data/badger
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"bate-papo/infrastructure/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

type options struct {
	dbPath    string
	prefix    string
	kind      string
	withIndex bool
}

func main() {
	var opts options
	flag.StringVar(&opts.dbPath, "db", database.DefaultPath, "Path to badger DB")
	flag.StringVar(&opts.prefix, "prefix", "", "Only keys starting with this prefix (participant:, msg:, msgidx:)")
	flag.StringVar(&opts.kind, "kind", "", "Only rows of this kind (participant, message, private_message, status, index)")
	flag.BoolVar(&opts.withIndex, "index", false, "Also show msgidx: entries")
	flag.Parse()

	db, err := openReadOnly(opts.dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if err := dump(db, opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// dump writes one row per record, then a count per kind.
func dump(db *badger.DB, opts options, w io.Writer) error {
	table := newTable(w)
	counts := map[string]int{}

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(opts.prefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			if !opts.withIndex && strings.HasPrefix(key, "msgidx:") {
				continue
			}
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %s: %w", key, err)
			}
			view, err := storage.Describe(key, val)
			if err != nil {
				fmt.Fprintf(w, "skipping %s: %v\n", key, err)
				continue
			}
			if opts.kind != "" && !strings.EqualFold(view.Kind, opts.kind) {
				continue
			}
			counts[view.Kind]++
			table.Append([]string{key, view.Kind, formatTime(view.At), view.Detail})
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.SetFooter(summary(counts))
	table.Render()
	return nil
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Type", "Time", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetFooterAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	return table
}

func summary(counts map[string]int) []string {
	kinds := make([]string, 0, len(counts))
	total := 0
	for kind, n := range counts {
		kinds = append(kinds, fmt.Sprintf("%s=%d", kind, n))
		total += n
	}
	sort.Strings(kinds)
	return []string{"total " + strconv.Itoa(total), "", "", strings.Join(kinds, " ")}
}

func formatTime(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	return at.Local().Format(time.DateTime)
}

// openReadOnly opens the store next to a running server.
// A store left dirty by a crash is opened once read-write so badger can truncate its log.
func openReadOnly(path string) (*badger.DB, error) {
	readOnly := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(readOnly)
	if err == nil || !strings.Contains(err.Error(), "Log truncate required") {
		return db, err
	}

	repaired, repairErr := badger.Open(badger.DefaultOptions(path).WithLogger(nil).WithBypassLockGuard(true))
	if repairErr != nil {
		return nil, errors.Join(err, fmt.Errorf("repair failed: %w", repairErr))
	}
	_ = repaired.Close()
	return badger.Open(readOnly)
}
