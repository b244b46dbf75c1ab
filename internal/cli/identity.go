package cli

import (
	"fmt"
	"os/user"
	"strings"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

// currentUser is replaced in tests.
var currentUser = user.Current

// resolveIdentity picks the caller: --as, then the identity config key
// (or GARDENS_IDENTITY), then the OS user name.
func resolveIdentity(flag, configured string) (types.Identity, error) {
	for _, s := range []string{flag, configured} {
		if s = strings.TrimSpace(s); s != "" {
			return types.NewIdentity(s), nil
		}
	}

	u, err := currentUser()
	if err != nil {
		return types.Identity{}, fmt.Errorf("resolve identity: %w (use --as)", err)
	}
	return types.NewIdentity(u.Username), nil
}
