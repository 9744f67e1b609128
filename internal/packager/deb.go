package packager

import (
	"archive/tar"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

func inspectDeb(path string) (*BuiltPackage, error) {
	fields, err := readDebControl(path)
	if err != nil {
		return nil, err
	}

	pkg := &BuiltPackage{
		Path:    path,
		Name:    fields["Package"],
		Version: fields["Version"],
		Arch:    fields["Architecture"],
	}
	// FPM writes <version>-<iteration> as the Debian version.
	if i := strings.LastIndex(pkg.Version, "-"); i > 0 {
		pkg.Version, pkg.Release = pkg.Version[:i], pkg.Version[i+1:]
	}
	for _, dep := range strings.Split(fields["Depends"], ",") {
		if dep = strings.TrimSpace(dep); dep != "" {
			pkg.Requires = append(pkg.Requires, dep)
		}
	}
	return pkg, nil
}

// readDebControl returns the fields of the control file inside a .deb, which
// is an ar archive holding debian-binary, control.tar[.gz|.xz|.zst] and data.tar.*.
func readDebControl(debPath string) (map[string]string, error) {
	f, err := os.Open(debPath)
	if err != nil {
		return nil, fmt.Errorf("opening deb: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if magic, err := br.Peek(len(ar.GLOBAL_HEADER)); err != nil || string(magic) != ar.GLOBAL_HEADER {
		return nil, fmt.Errorf("%s is not an ar archive", debPath)
	}

	rd := ar.NewReader(br)
	for {
		hdr, err := rd.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("no control archive in %s", debPath)
			}
			return nil, fmt.Errorf("reading ar header: %w", err)
		}
		// GNU ar terminates member names with a slash.
		name := strings.TrimSuffix(hdr.Name, "/")
		if strings.HasPrefix(name, "control.tar") {
			return readControlTar(name, io.LimitReader(rd, hdr.Size))
		}
	}
}

func readControlTar(member string, r io.Reader) (map[string]string, error) {
	tr, closeFn, err := decompress(member, r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	t := tar.NewReader(tr)
	for {
		h, err := t.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("no control file in %s", member)
			}
			return nil, fmt.Errorf("reading %s: %w", member, err)
		}
		if path.Clean(strings.TrimPrefix(h.Name, "./")) != "control" {
			continue
		}
		data, err := io.ReadAll(t)
		if err != nil {
			return nil, fmt.Errorf("reading control file: %w", err)
		}
		return parseControlFields(data), nil
	}
}

func decompress(member string, r io.Reader) (io.Reader, func(), error) {
	noop := func() {}
	switch path.Ext(member) {
	case ".tar":
		return r, noop, nil
	case ".gz":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("opening %s: %w", member, err)
		}
		return gr, func() { gr.Close() }, nil
	case ".xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("opening %s: %w", member, err)
		}
		return xr, noop, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("opening %s: %w", member, err)
		}
		return zr, zr.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported control archive compression: %s", member)
	}
}

// parseControlFields parses RFC 822 style "Key: value" lines; continuation
// lines (leading space or tab) are appended to the previous field.
func parseControlFields(data []byte) map[string]string {
	fields := make(map[string]string)
	var last string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && last != "" {
			fields[last] += "\n" + strings.TrimSpace(line)
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		last = strings.TrimSpace(key)
		fields[last] = strings.TrimSpace(value)
	}
	return fields
}
