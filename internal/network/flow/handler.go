package flow

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
)

const sep = "_"

// NewHandler maps a (student, server, service) triple to its handler.
// The components may not contain the separator, so distinct triples never share a handler.
func NewHandler(studentCode int, server, service string) (string, error) {
	if studentCode < 1 {
		return "", errors.Wrapf(terrors.ErrInvalidValue, "student code %d", studentCode)
	}
	for _, part := range []string{server, service} {
		if len(part) == 0 || strings.Contains(part, sep) {
			return "", errors.Wrapf(terrors.ErrInvalidValue, "handler component %q", part)
		}
	}
	return fmt.Sprintf("%d%s%s%s%s", studentCode, sep, server, sep, service), nil
}

// RuleName .
func RuleName(handler string, kind types.RuleKind, hop int) string {
	return fmt.Sprintf("%s%s%s%s%d", handler, sep, kind, sep, hop)
}

// RuleNames enumerates the names Compile produces for a route of hops switches.
func RuleNames(handler string, hops int) []string {
	var names = make([]string, 0, hops*len(types.Kinds))
	for i := 0; i < hops; i++ {
		for _, kind := range types.Kinds {
			names = append(names, RuleName(handler, kind, i))
		}
	}
	return names
}

// TeardownNames lists the rules to delete for a connection of hops switches.
// ARP rules are left in place unless withARP is set.
func TeardownNames(handler string, hops int, withARP bool) []string {
	var names = make([]string, 0, hops*len(types.Kinds))
	for i := 0; i < hops; i++ {
		names = append(names,
			RuleName(handler, types.KindForward, i),
			RuleName(handler, types.KindReverse, i),
		)
		if withARP {
			names = append(names, RuleName(handler, types.KindARP, i))
		}
	}
	return names
}
