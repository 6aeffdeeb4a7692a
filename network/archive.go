package network

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/SirZenith/kgebench/common"
	"github.com/klauspost/compress/zip"
)

// ExtractArchive copies archive members to output paths. `members` maps member
// path inside archive to output path. Supported archives are zip, tar, tar.gz
// and tgz. For single file compression (gz, zst, br) `members` must hold
// exactly one entry, its key is ignored.
func ExtractArchive(archivePath string, members map[string]string) error {
	lower := strings.ToLower(archivePath)

	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(archivePath, members)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTar(archivePath, members, true)
	case strings.HasSuffix(lower, ".tar"):
		return extractTar(archivePath, members, false)
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".br"):
		return decompressSingle(archivePath, members)
	default:
		return fmt.Errorf("unsupported archive format: %s", archivePath)
	}
}

func normalizeMemberName(name string) string {
	name = strings.TrimPrefix(name, "./")
	return path.Clean(name)
}

func missingMembers(members map[string]string, found map[string]bool) error {
	missing := []string{}
	for name := range members {
		if !found[normalizeMemberName(name)] {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	return fmt.Errorf("archive members not found: %s", strings.Join(missing, ", "))
}

func lookupMember(members map[string]string) map[string]string {
	result := make(map[string]string, len(members))
	for name, output := range members {
		result[normalizeMemberName(name)] = output
	}
	return result
}

func writeMember(output string, reader io.Reader) error {
	return common.WriteFileAtomic(output, func(w io.Writer) error {
		_, err := io.Copy(w, reader)
		return err
	})
}

func extractZip(archivePath string, members map[string]string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip file %s: %s", archivePath, err)
	}
	defer reader.Close()

	lookup := lookupMember(members)
	found := map[string]bool{}

	for _, file := range reader.File {
		name := normalizeMemberName(file.Name)
		output, ok := lookup[name]
		if !ok {
			continue
		}

		src, err := file.Open()
		if err != nil {
			return fmt.Errorf("failed to open member %s: %s", file.Name, err)
		}

		err = writeMember(output, src)
		src.Close()
		if err != nil {
			return err
		}

		found[name] = true
	}

	return missingMembers(members, found)
}

func extractTar(archivePath string, members map[string]string, gzipped bool) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %s", archivePath, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if gzipped {
		decoder, err := NewDecoder("gzip", file)
		if err != nil {
			return fmt.Errorf("failed to read gzip stream %s: %s", archivePath, err)
		}
		defer decoder.Close()
		reader = decoder
	}

	lookup := lookupMember(members)
	found := map[string]bool{}

	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("failed to read tar entry in %s: %s", archivePath, err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := normalizeMemberName(header.Name)
		output, ok := lookup[name]
		if !ok {
			continue
		}

		if err := writeMember(output, tarReader); err != nil {
			return err
		}

		found[name] = true
	}

	return missingMembers(members, found)
}

func decompressSingle(archivePath string, members map[string]string) error {
	if len(members) != 1 {
		return fmt.Errorf("single file archive %s needs exactly one output, got %d", archivePath, len(members))
	}

	var output string
	for _, value := range members {
		output = value
	}

	encoding, ok := EncodingOfFile(archivePath)
	if !ok {
		return fmt.Errorf("unsupported archive format: %s", archivePath)
	}

	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %s", archivePath, err)
	}
	defer file.Close()

	reader, err := NewDecoder(encoding, file)
	if err != nil {
		return fmt.Errorf("failed to read %s stream %s: %s", encoding, archivePath, err)
	}
	defer reader.Close()

	return writeMember(output, reader)
}
