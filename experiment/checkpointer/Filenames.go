package checkpointer

import (
	"fmt"
	"path/filepath"
	"time"
)

// FilenameEnumerator returns a function which returns the filenames
// name<start+1>ext, name<start+2>ext, ... on consecutive calls. The
// name parameter may include a directory.
func FilenameEnumerator(start int, name, ext string) func() string {
	i := start
	return func() string {
		i++
		return fmt.Sprintf("%v%v%v", name, i, ext)
	}
}

// FileTimer returns a function which returns name-<nanoseconds since
// the Unix epoch>ext on each call.
func FileTimer(name, ext string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%v%v", name, time.Now().UnixNano(), ext)
	}
}

// InDir returns a function which places the filenames returned by
// filename inside dir
func InDir(dir string, filename func() string) func() string {
	return func() string {
		return filepath.Join(dir, filename())
	}
}
