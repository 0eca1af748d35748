package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qobs-build/projgen/internal/target"
)

var ErrUnknownKind = errors.New("unknown project kind")

type Kind int

const (
	App Kind = iota
	SharedApp
	Lib
	SharedLib
	ActiveXPlugin
	SafariPlugin
	ManagedProject
)

var kindNames = [...]string{
	App:            "App",
	SharedApp:      "SharedApp",
	Lib:            "Lib",
	SharedLib:      "SharedLib",
	ActiveXPlugin:  "ActiveXPlugin",
	SafariPlugin:   "SafariPlugin",
	ManagedProject: "ManagedProject",
}

var kindKeys = [...]string{
	App:            target.KeyApp,
	SharedApp:      target.KeySharedApp,
	Lib:            target.KeyLib,
	SharedLib:      target.KeySharedLib,
	ActiveXPlugin:  target.KeyActiveX,
	SafariPlugin:   target.KeySafari,
	ManagedProject: target.KeyManaged,
}

// Visual Studio project type GUIDs
const (
	TypeGUIDCpp    = "{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}"
	TypeGUIDCSharp = "{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}"
)

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Key is the template key used by build targets for this kind.
func (k Kind) Key() string {
	if k < 0 || int(k) >= len(kindKeys) {
		return ""
	}
	return kindKeys[k]
}

// IsLibrary reports whether the kind contributes its include paths to applications.
func (k Kind) IsLibrary() bool { return k == Lib || k == SharedLib }

func (k Kind) IsShared() bool { return k == SharedApp || k == SharedLib }

func (k Kind) TypeGUID() string {
	if k == ManagedProject {
		return TypeGUIDCSharp
	}
	return TypeGUIDCpp
}

// ParseKind accepts a kind name or template key, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) || strings.EqualFold(s, kindKeys[i]) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
