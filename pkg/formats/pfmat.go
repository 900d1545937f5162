package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrMaterialParse is returned for any malformed pfmat content.
var ErrMaterialParse = errors.New("material parse failure")

// Material is one entry of a pfmat file.
type Material struct {
	Name             string
	AmbientIntensity float32
	Diffuse          mgl32.Vec3
	Specular         mgl32.Vec3
	Texture          string
}

// ParsePFMat reads exactly numMaterials material blocks from r:
//
//	material <name>
//		ambient <f>
//		diffuse <r> <g> <b>
//		specular <r> <g> <b>
//		texture <file>
//
// Blank lines and lines starting with '#' are ignored. Blocks beyond
// numMaterials are not read.
func ParsePFMat(r io.Reader, numMaterials int) ([]Material, error) {
	if numMaterials <= 0 {
		return nil, fmt.Errorf("%w: material count %d", ErrMaterialParse, numMaterials)
	}

	p := &pfmatParser{sc: bufio.NewScanner(r)}
	mats := make([]Material, 0, numMaterials)

	for len(mats) < numMaterials {
		mat, err := p.parseMaterial()
		if err != nil {
			return nil, err
		}
		mats = append(mats, mat)
	}
	return mats, nil
}

type pfmatParser struct {
	sc   *bufio.Scanner
	line int
}

// next returns the fields of the next non-blank, non-comment line.
func (p *pfmatParser) next() ([]string, error) {
	for p.sc.Scan() {
		p.line++
		text := strings.TrimSpace(p.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return strings.Fields(text), nil
	}
	if err := p.sc.Err(); err != nil {
		return nil, &ParseError{Line: p.line + 1, Err: fmt.Errorf("%w: %w", ErrMaterialParse, err)}
	}
	return nil, &ParseError{Line: p.line + 1, Err: fmt.Errorf("%w: %w", ErrMaterialParse, io.ErrUnexpectedEOF)}
}

func (p *pfmatParser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Err: fmt.Errorf("%w: "+format, append([]any{ErrMaterialParse}, args...)...)}
}

func (p *pfmatParser) parseMaterial() (Material, error) {
	var mat Material

	fields, err := p.next()
	if err != nil {
		return Material{}, err
	}
	if fields[0] != "material" || len(fields) != 2 {
		return Material{}, p.errorf("expected \"material <name>\", got %q", strings.Join(fields, " "))
	}
	mat.Name = fields[1]

	fields, err = p.expect("ambient", 1)
	if err != nil {
		return Material{}, err
	}
	if mat.AmbientIntensity, err = p.parseFloat(fields[0]); err != nil {
		return Material{}, err
	}

	if fields, err = p.expect("diffuse", 3); err != nil {
		return Material{}, err
	}
	if mat.Diffuse, err = p.parseVec3(fields); err != nil {
		return Material{}, err
	}

	if fields, err = p.expect("specular", 3); err != nil {
		return Material{}, err
	}
	if mat.Specular, err = p.parseVec3(fields); err != nil {
		return Material{}, err
	}

	if fields, err = p.expect("texture", 1); err != nil {
		return Material{}, err
	}
	mat.Texture = fields[0]

	return mat, nil
}

// expect reads the next line and checks that it is "<key> <n values>".
func (p *pfmatParser) expect(key string, n int) ([]string, error) {
	fields, err := p.next()
	if err != nil {
		return nil, err
	}
	if fields[0] != key {
		return nil, p.errorf("expected %q, got %q", key, fields[0])
	}
	if len(fields)-1 != n {
		return nil, p.errorf("%s takes %d values, got %d", key, n, len(fields)-1)
	}
	return fields[1:], nil
}

func (p *pfmatParser) parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, p.errorf("bad number %q", s)
	}
	return float32(v), nil
}

func (p *pfmatParser) parseVec3(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	for i := range v {
		f, err := p.parseFloat(fields[i])
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

// WritePFMat writes mats in the form ParsePFMat accepts.
func WritePFMat(w io.Writer, mats []Material) error {
	var sb strings.Builder
	for i, m := range mats {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "material %s\n", m.Name)
		fmt.Fprintf(&sb, "\tambient %g\n", m.AmbientIntensity)
		fmt.Fprintf(&sb, "\tdiffuse %g %g %g\n", m.Diffuse[0], m.Diffuse[1], m.Diffuse[2])
		fmt.Fprintf(&sb, "\tspecular %g %g %g\n", m.Specular[0], m.Specular[1], m.Specular[2])
		fmt.Fprintf(&sb, "\ttexture %s\n", m.Texture)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
