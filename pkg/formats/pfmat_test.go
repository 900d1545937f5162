package formats

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const testPFMat = `# grass cliffs
material Grass
	ambient 1.0
	diffuse 0.8 0.9 0.7
	specular 0.1 0.1 0.1
	texture grass.png

material Cliff
	ambient 0.5
	diffuse 0.6 0.5 0.4
	specular 0.2 0.2 0.2
	texture cliffs.png
`

func TestParsePFMat_Valid(t *testing.T) {
	mats, err := ParsePFMat(strings.NewReader(testPFMat), 2)
	if err != nil {
		t.Fatalf("ParsePFMat failed: %v", err)
	}
	if len(mats) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(mats))
	}

	if mats[0].Name != "Grass" || mats[0].Texture != "grass.png" {
		t.Errorf("unexpected first material: %+v", mats[0])
	}
	if mats[0].AmbientIntensity != 1.0 {
		t.Errorf("expected ambient 1.0, got %f", mats[0].AmbientIntensity)
	}
	if !mats[1].Diffuse.ApproxEqual(mgl32.Vec3{0.6, 0.5, 0.4}) {
		t.Errorf("unexpected diffuse %v", mats[1].Diffuse)
	}
	if !mats[1].Specular.ApproxEqual(mgl32.Vec3{0.2, 0.2, 0.2}) {
		t.Errorf("unexpected specular %v", mats[1].Specular)
	}
}

func TestParsePFMat_ReadsOnlyDeclaredCount(t *testing.T) {
	mats, err := ParsePFMat(strings.NewReader(testPFMat), 1)
	if err != nil {
		t.Fatalf("ParsePFMat failed: %v", err)
	}
	if len(mats) != 1 || mats[0].Name != "Grass" {
		t.Errorf("unexpected materials %+v", mats)
	}
}

func TestParsePFMat_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
	}{
		{"too few materials", testPFMat, 3},
		{"zero count", testPFMat, 0},
		{"missing header", "ambient 1.0\n", 1},
		{"bad number", "material A\n\tambient x\n\tdiffuse 1 1 1\n\tspecular 1 1 1\n\ttexture a.png\n", 1},
		{"short diffuse", "material A\n\tambient 1\n\tdiffuse 1 1\n\tspecular 1 1 1\n\ttexture a.png\n", 1},
		{"wrong order", "material A\n\tdiffuse 1 1 1\n\tambient 1\n\tspecular 1 1 1\n\ttexture a.png\n", 1},
		{"missing texture", "material A\n\tambient 1\n\tdiffuse 1 1 1\n\tspecular 1 1 1\n", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePFMat(strings.NewReader(tc.input), tc.count)
			if !errors.Is(err, ErrMaterialParse) {
				t.Errorf("expected ErrMaterialParse, got %v", err)
			}
		})
	}
}

func TestParsePFMat_ErrorLine(t *testing.T) {
	input := "material A\n\tambient 1\n\tdiffuse 1 1 oops\n"
	_, err := ParsePFMat(strings.NewReader(input), 1)

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Line != 3 {
		t.Errorf("expected error on line 3, got %d", perr.Line)
	}
}

func TestWritePFMat_RoundTrip(t *testing.T) {
	mats := []Material{
		{Name: "Sand", AmbientIntensity: 0.75, Diffuse: mgl32.Vec3{1, 0.9, 0.5}, Specular: mgl32.Vec3{0, 0, 0}, Texture: "sand.png"},
		{Name: "Rock", AmbientIntensity: 1, Diffuse: mgl32.Vec3{0.5, 0.5, 0.5}, Specular: mgl32.Vec3{0.25, 0.25, 0.25}, Texture: "rock.png"},
	}

	var buf bytes.Buffer
	if err := WritePFMat(&buf, mats); err != nil {
		t.Fatalf("WritePFMat failed: %v", err)
	}
	got, err := ParsePFMat(&buf, len(mats))
	if err != nil {
		t.Fatalf("ParsePFMat failed: %v", err)
	}
	for i := range mats {
		if got[i] != mats[i] {
			t.Errorf("material %d: expected %+v, got %+v", i, mats[i], got[i])
		}
	}
}
