package htmlpatch

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/net/html"
)

// Result describes what PatchFile did to a page.
type Result int

const (
	Inserted Result = iota
	AlreadyPresent
	NoBody
)

func (r Result) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyPresent:
		return "already present"
	case NoBody:
		return "no </body>"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// ScriptTag returns the script reference injected into reader pages.
func ScriptTag(src string) string {
	return `<script src="` + src + `"></script>`
}

// Insert returns content with tag placed on its own line right before the closing
// body tag. Content that already contains tag, or has no closing body tag, is
// returned unchanged.
func Insert(content []byte, tag string) ([]byte, Result) {
	if bytes.Contains(content, []byte(tag)) {
		return content, AlreadyPresent
	}

	offset, ok := bodyEnd(content)
	if !ok {
		return content, NoBody
	}

	out := make([]byte, 0, len(content)+len(tag)+2)
	out = append(out, content[:offset]...)
	out = append(out, '\n')
	out = append(out, tag...)
	out = append(out, '\n')
	out = append(out, content[offset:]...)
	return out, Inserted
}

// bodyEnd returns the byte offset of the first </body> end tag. The tokenizer
// matches the tag case-insensitively and ignores "</body>" inside comments or
// script text.
func bodyEnd(content []byte) (int, bool) {
	z := html.NewTokenizer(bytes.NewReader(content))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, false
		}
		size := len(z.Raw())
		if tt == html.EndTagToken {
			if name, _ := z.TagName(); string(name) == "body" {
				return offset, true
			}
		}
		offset += size
	}
}

// PatchFile ensures the page at path references the script tag. The file is only
// rewritten when the tag was inserted.
func PatchFile(path, tag string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return NoBody, fmt.Errorf("stat %s: %w", path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return NoBody, fmt.Errorf("read %s: %w", path, err)
	}

	patched, result := Insert(content, tag)
	if result != Inserted {
		return result, nil
	}

	if err := os.WriteFile(path, patched, info.Mode().Perm()); err != nil {
		return result, fmt.Errorf("write %s: %w", path, err)
	}
	return result, nil
}
