package speech

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Voice describes a single synthesis voice offered by the platform.
type Voice struct {
	ID       string
	Name     string
	Language string // BCP 47 style tag, e.g. "en-US" or "en_US"
	Gender   string // "male", "female" or empty when unknown
}

// Catalog exposes the platform voice inventory. Ready blocks until the
// inventory is populated; on some platforms the list arrives late.
type Catalog interface {
	Ready(ctx context.Context) error
	Voices() []Voice
}

// StaticCatalog is a fixed voice list, used in tests and for injected
// inventories.
type StaticCatalog struct {
	list []Voice
}

// NewStaticCatalog creates a catalog from a fixed set of voices.
func NewStaticCatalog(voices ...Voice) *StaticCatalog {
	return &StaticCatalog{list: voices}
}

func (c *StaticCatalog) Ready(context.Context) error { return nil }

func (c *StaticCatalog) Voices() []Voice {
	out := make([]Voice, len(c.list))
	copy(out, c.list)
	return out
}

// DirCatalog discovers voices by scanning a model directory for piper
// style .onnx models. A sidecar "<model>.onnx.json" may carry language
// and gender hints; otherwise they are parsed from the file name
// ("en_US-lessac-medium.onnx").
type DirCatalog struct {
	dir string

	once   sync.Once
	voices []Voice
	err    error
}

// NewDirCatalog creates a catalog scanning dir on first use.
func NewDirCatalog(dir string) *DirCatalog {
	return &DirCatalog{dir: dir}
}

func (c *DirCatalog) Ready(ctx context.Context) error {
	c.once.Do(func() { c.voices, c.err = scanModelDir(c.dir) })
	if c.err != nil {
		return c.err
	}
	return ctx.Err()
}

func (c *DirCatalog) Voices() []Voice {
	out := make([]Voice, len(c.voices))
	copy(out, c.voices)
	return out
}

// modelSidecar is the subset of the piper model config we care about.
type modelSidecar struct {
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Gender string `json:"gender"`
}

func scanModelDir(dir string) ([]Voice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var voices []Voice
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".onnx") {
			continue
		}

		voice := voiceFromFileName(name)
		voice.ID = filepath.Join(dir, name)

		if sidecar, err := readSidecar(filepath.Join(dir, name+".json")); err == nil {
			if sidecar.Language.Code != "" {
				voice.Language = sidecar.Language.Code
			}
			if sidecar.Gender != "" {
				voice.Gender = strings.ToLower(sidecar.Gender)
			}
		}

		voices = append(voices, voice)
	}

	sort.Slice(voices, func(i, j int) bool { return voices[i].Name < voices[j].Name })
	log.Debug("scanned voice models", "dir", dir, "count", len(voices))
	return voices, nil
}

func readSidecar(path string) (*modelSidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sidecar modelSidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return nil, err
	}
	return &sidecar, nil
}

// voiceFromFileName derives voice fields from names like
// "en_US-lessac-medium.onnx".
func voiceFromFileName(name string) Voice {
	base := strings.TrimSuffix(name, ".onnx")
	voice := Voice{Name: base}

	parts := strings.SplitN(base, "-", 2)
	if len(parts) == 2 {
		voice.Language = parts[0]
		voice.Name = parts[1]
	}
	return voice
}

// SelectVoice picks a voice for the requested language and profile. The
// heuristic is deterministic: exact language matches win over language
// family matches; within the chosen set energetic and deep profiles
// prefer male-labelled voices and calm prefers female-labelled ones.
// With no language match at all the first voice is used.
func SelectVoice(voices []Voice, language string, profile Profile) (Voice, error) {
	if len(voices) == 0 {
		return Voice{}, ErrNoVoiceAvailable
	}

	candidates := filterLanguage(voices, language, false)
	if len(candidates) == 0 {
		candidates = filterLanguage(voices, language, true)
	}
	if len(candidates) == 0 {
		return voices[0], nil
	}

	preferred := preferredGender(profile)
	if preferred != "" {
		for _, v := range candidates {
			if v.Gender == preferred {
				return v, nil
			}
		}
	}
	return candidates[0], nil
}

func preferredGender(profile Profile) string {
	switch profile {
	case ProfileEnergetic, ProfileDeep:
		return "male"
	case ProfileCalm:
		return "female"
	}
	return ""
}

func filterLanguage(voices []Voice, language string, familyOnly bool) []Voice {
	want := normalizeTag(language)
	if familyOnly {
		want = languageFamily(want)
	}
	if want == "" {
		return nil
	}

	var out []Voice
	for _, v := range voices {
		have := normalizeTag(v.Language)
		if familyOnly {
			have = languageFamily(have)
		}
		if have == want {
			out = append(out, v)
		}
	}
	return out
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
}

func languageFamily(tag string) string {
	if i := strings.IndexByte(tag, '-'); i > 0 {
		return tag[:i]
	}
	return tag
}
