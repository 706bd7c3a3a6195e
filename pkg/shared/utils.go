package shared

import (
	"github.com/spf13/pflag"
)

// HasFlags reports whether any flag on the set was changed by the user.
func HasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed = true
		}
	})
	return changed
}

// IsInList reports whether value is one of list.
func IsInList(value string, list []string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
