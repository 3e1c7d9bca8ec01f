// Package archive saves and loads projects as zip containers: a
// version-tagged project.json next to an assets/ directory holding every
// raster and video payload as a binary entry. Payload-bearing JSON fields
// reference asset paths inside the archive instead of inline data.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/geometry"
	"github.com/promptboard/promptboard/internal/raster"
)

// FormatVersion tags project.json so later readers can migrate.
const FormatVersion = 1

const projectEntry = "project.json"

var (
	// ErrMissingProject indicates the archive has no project.json entry.
	ErrMissingProject = errors.New("archive missing project.json")

	// ErrUnsupportedVersion indicates a project.json from a newer format.
	ErrUnsupportedVersion = errors.New("unsupported project version")
)

// projectFile is the shape of project.json.
type projectFile struct {
	Version     int                      `json:"version"`
	Name        string                   `json:"name"`
	AspectRatio string                   `json:"aspectRatio"`
	Transform   geometry.Transform       `json:"transform"`
	Images      []document.ImageObject   `json:"images"`
	Texts       []document.TextObject    `json:"texts"`
	Drawings    []document.DrawingObject `json:"drawings"`
	LayerOrder  []string                 `json:"layerOrder"`
}

// Export writes the document as a project archive. Every inline payload is
// decoded and stored as a uniquely named asset entry; the JSON references
// the entry path.
func Export(w io.Writer, doc *document.Document, name string, view geometry.Transform) error {
	zw := zip.NewWriter(w)

	project := projectFile{
		Version:     FormatVersion,
		Name:        name,
		AspectRatio: doc.AspectRatio,
		Transform:   view,
		Images:      doc.Images(),
		Texts:       doc.Texts(),
		Drawings:    doc.Drawings(),
		LayerOrder:  doc.LayerOrder(),
	}

	for i := range project.Images {
		img := &project.Images[i]
		if err := externalize(zw, &img.Src, "image"); err != nil {
			return fmt.Errorf("image %s: %w", img.ID, err)
		}
		if err := externalize(zw, &img.MaskSrc, "mask"); err != nil {
			return fmt.Errorf("image %s mask: %w", img.ID, err)
		}
		if err := externalize(zw, &img.ModelSheetSrc, "modelsheet"); err != nil {
			return fmt.Errorf("image %s model sheet: %w", img.ID, err)
		}
		for p := range img.Poses {
			if err := externalize(zw, &img.Poses[p], "pose"); err != nil {
				return fmt.Errorf("image %s pose %d: %w", img.ID, p, err)
			}
		}
		if err := externalize(zw, &img.VideoSrc, "video"); err != nil {
			return fmt.Errorf("image %s video: %w", img.ID, err)
		}
	}
	for i := range project.Drawings {
		d := &project.Drawings[i]
		if err := externalize(zw, &d.DrawingSrc, "drawing"); err != nil {
			return fmt.Errorf("drawing %s: %w", d.ID, err)
		}
	}

	entry, err := zw.Create(projectEntry)
	if err != nil {
		return fmt.Errorf("create project.json: %w", err)
	}
	enc := json.NewEncoder(entry)
	enc.SetIndent("", "  ")
	if err := enc.Encode(project); err != nil {
		return fmt.Errorf("encode project.json: %w", err)
	}
	return zw.Close()
}

// externalize moves one inline payload field into an asset entry, replacing
// the field value with the entry path. Empty fields are left alone.
func externalize(zw *zip.Writer, field *string, kind string) error {
	if *field == "" {
		return nil
	}
	payload, err := raster.ParseDataURL(*field)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	path := assetPath(kind, payload.MIME)
	entry, err := zw.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := entry.Write(payload.Data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	*field = path
	return nil
}

func assetPath(kind, mime string) string {
	return fmt.Sprintf("assets/%s_%d_%s%s",
		kind, time.Now().UnixMilli(), uuid.NewString()[:8], extFor(mime))
}

func extFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	default:
		return ".bin"
	}
}

// Import reads a project archive and atomically replaces the document's
// contents. On any failure the document is left exactly as it was. Returns
// the stored project name and view transform.
func Import(r io.ReaderAt, size int64, doc *document.Document) (string, geometry.Transform, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", geometry.Transform{}, fmt.Errorf("open archive: %w", err)
	}

	var project projectFile
	found := false
	for _, f := range zr.File {
		if f.Name == projectEntry {
			if err := readJSON(f, &project); err != nil {
				return "", geometry.Transform{}, err
			}
			found = true
			break
		}
	}
	if !found {
		return "", geometry.Transform{}, ErrMissingProject
	}
	if project.Version > FormatVersion {
		return "", geometry.Transform{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, project.Version)
	}

	assets := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		assets[f.Name] = f
	}

	for i := range project.Images {
		img := &project.Images[i]
		fields := []*string{&img.Src, &img.MaskSrc, &img.ModelSheetSrc, &img.VideoSrc}
		for p := range img.Poses {
			fields = append(fields, &img.Poses[p])
		}
		for _, field := range fields {
			if err := internalize(assets, field); err != nil {
				return "", geometry.Transform{}, fmt.Errorf("image %s: %w", img.ID, err)
			}
		}
	}
	for i := range project.Drawings {
		if err := internalize(assets, &project.Drawings[i].DrawingSrc); err != nil {
			return "", geometry.Transform{}, fmt.Errorf("drawing %s: %w", project.Drawings[i].ID, err)
		}
	}

	if err := doc.ReplaceAll(project.Images, project.Texts, project.Drawings, project.LayerOrder); err != nil {
		return "", geometry.Transform{}, fmt.Errorf("replace document: %w", err)
	}
	if document.ValidAspectRatio(project.AspectRatio) {
		doc.AspectRatio = project.AspectRatio
	}
	return project.Name, project.Transform, nil
}

// internalize resolves one asset-path field back into an inline payload.
func internalize(assets map[string]*zip.File, field *string) error {
	if *field == "" || !strings.HasPrefix(*field, "assets/") {
		return nil
	}
	f, ok := assets[*field]
	if !ok {
		return fmt.Errorf("missing archive entry %s", *field)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	*field = raster.EncodeDataURL(sniffMIME(f.Name, data), data)
	return nil
}

// sniffMIME prefers the file extension, falling back to content detection.
func sniffMIME(name string, data []byte) string {
	switch {
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(name, ".webp"):
		return "image/webp"
	case strings.HasSuffix(name, ".gif"):
		return "image/gif"
	case strings.HasSuffix(name, ".mp4"):
		return "video/mp4"
	}
	return http.DetectContentType(data)
}

func readJSON(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", f.Name, err)
	}
	return nil
}

// ExportBytes is a convenience wrapper returning the archive in memory.
func ExportBytes(doc *document.Document, name string, view geometry.Transform) ([]byte, error) {
	var buf bytes.Buffer
	if err := Export(&buf, doc, name, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImportBytes is a convenience wrapper over Import for in-memory archives.
func ImportBytes(data []byte, doc *document.Document) (string, geometry.Transform, error) {
	return Import(bytes.NewReader(data), int64(len(data)), doc)
}
