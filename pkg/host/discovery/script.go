package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	hosterrors "github.com/jvano/azure-webjobs-sdk-script/pkg/host/errors"
)

// scriptStems are the conventional primary-script stems, in preference
// order.
var scriptStems = []string{"run", "index"}

// DeterminePrimaryScriptFile resolves the primary source file for a
// function directory.
//
// An explicit scriptFile declared in the function document always
// wins: it is resolved against the directory by pure path arithmetic
// and returned verbatim, without consulting the file system, so a
// missing file or a case mismatch on disk surfaces later at load time
// rather than during discovery.
//
// Without a declaration the directory listing decides: a single
// non-metadata file is the primary script; otherwise a unique file
// with stem "run" is preferred, then a unique "index". Anything else
// is ambiguous.
func DeterminePrimaryScriptFile(scriptFile, functionDir string, fsys fs.FS) (string, error) {
	if scriptFile != "" {
		return filepath.Join(functionDir, filepath.FromSlash(scriptFile)), nil
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", hosterrors.NewConfigurationError(filepath.Base(functionDir),
			fmt.Sprintf("unable to read function directory '%s'", functionDir))
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.EqualFold(entry.Name(), FunctionFileName) {
			continue
		}
		files = append(files, entry.Name())
	}

	if len(files) == 1 {
		return filepath.Join(functionDir, files[0]), nil
	}

	for _, stem := range scriptStems {
		var matches []string
		for _, name := range files {
			base := strings.TrimSuffix(name, filepath.Ext(name))
			if strings.EqualFold(base, stem) {
				matches = append(matches, name)
			}
		}
		if len(matches) == 1 {
			return filepath.Join(functionDir, matches[0]), nil
		}
		if len(matches) > 1 {
			// Several files share the preferred stem; picking one
			// silently would mask a deployment mistake.
			break
		}
	}

	return "", hosterrors.NewConfigurationError(filepath.Base(functionDir),
		fmt.Sprintf("unable to determine the primary function script file in directory '%s'", functionDir))
}
