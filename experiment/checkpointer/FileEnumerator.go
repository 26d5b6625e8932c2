package checkpointer

import "fmt"

// FilenameEnumerator returns a function which returns filenames with
// an increasing integer suffix placed before the extension. The first
// call returns the name numbered start+1. The filename parameter is
// the full filename with its path, e.g.
//
//	next := FilenameEnumerator(0, "out/qtable", ".zst")
//	next() // out/qtable1.zst
//	next() // out/qtable2.zst
func FilenameEnumerator(start int, filename, extension string) func() string {
	i := start
	return func() string {
		i++
		return fmt.Sprintf("%v%v%v", filename, i, extension)
	}
}

// Fixed returns a function which always returns filename, so that each
// checkpoint overwrites the last
func Fixed(filename string) func() string {
	return func() string { return filename }
}
