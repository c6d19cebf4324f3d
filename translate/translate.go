// Package translate renders the VM's error and diagnostic messages in the
// language of the host. Messages are written as en-US format strings and
// looked up through golang.org/x/text/message, so a catalog can be added
// without touching the callers in package vm.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// fallback is used when the host reports no locale, e.g. a bare container.
const fallback = "en-US"

var printer = sync.OnceValue(func() *message.Printer {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("lc3: locale: %v", err)
	}
	if len(locales) == 0 {
		locales = []string{fallback}
	}

	return message.NewPrinter(message.MatchLanguage(locales...))
})

// From formats an en-US Sprintf() style message for the host locale.
func From(key message.Reference, args ...any) string {
	return printer().Sprintf(key, args...)
}
