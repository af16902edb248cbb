package release

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// descriptorNameLine matches the descriptor's version-carrying line,
// "name : <namespace>::<name>:<version>", capturing everything up to the
// version so it can be spliced in place.
var descriptorNameLine = regexp.MustCompile(`^(\s*name\s*:\s*[^:\s]+::[^:\s]+:)(\S+)(\s*)$`)

// WriteVersionFile writes the bare version string as the whole body of
// the version file, newline terminated.
func WriteVersionFile(path, version string) error {
	if err := os.WriteFile(path, []byte(version+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}
	return nil
}

// SpliceDescriptorVersion rewrites the version on the first descriptor
// line matching "name : <namespace>::<name>:<version>", leaving every
// other byte of the content untouched.
func SpliceDescriptorVersion(content, version string) (string, error) {
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		m := descriptorNameLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lines[i] = m[1] + version + m[3]
		return strings.Join(lines, "\n"), nil
	}

	return "", fmt.Errorf("descriptor has no \"name : <namespace>::<name>:<version>\" line")
}

// RewriteDescriptor splices the new version into the descriptor file in
// place.
func RewriteDescriptor(path, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading descriptor: %w", err)
	}

	out, err := SpliceDescriptorVersion(string(data), version)
	if err != nil {
		return fmt.Errorf("rewriting descriptor %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing descriptor: %w", err)
	}
	return nil
}
