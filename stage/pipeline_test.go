package stage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

// Every file that enters the pipeline is found exactly once afterwards,
// whatever happened to it.
func TestPipelineNeverLosesAFile(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "Photos")
	album := filepath.Join(root, "Takeout", "Google Photos", "Trip")

	inputs := map[string]string{
		"IMG_0001.jpg":            "media: recovered from sidecar",
		"IMG_0001.jpg.json":       takenJSON,
		"IMG_0002-edited.jpg":     "media: edited copy",
		"IMG_0002.jpg.json":       `{"photoTakenTime":{"timestamp":"1628951400"}}`,
		"VID_20210815_143000.mp4": "media: name only",
		"20210815_143000.mp4":     "media: same second",
		"randomname.mov":          "media: no date at all",
		"IMG_0003.jpg":            "media: broken sidecar",
		"IMG_0003.jpg.json":       `{"photoTakenTime":{"timestamp":"later"}}`,
		".DS_Store":               "finder",
	}
	for name, body := range inputs {
		writeFile(t, filepath.Join(album, name), body)
	}

	ctx := context.Background()
	tagger := newFakeTagger()
	env := Env{Root: root, RunID: "pipeline"}

	if _, err := (&Recover{Env: env, Tagger: tagger, Extensions: media, IsolateFailures: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := (&Rename{Env: env, Reader: tagger, Extensions: media, SubsecondDigits: 2}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := (&Organize{Env: env, Extensions: media, Output: out, Mode: ByMonth}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := (&Cleanup{Env: env}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	seen := make(map[string][]string)
	for _, rel := range tree(t, root) {
		if strings.HasPrefix(rel, "logs/") {
			continue
		}
		body := readFile(t, filepath.Join(root, filepath.FromSlash(rel)))
		seen[body] = append(seen[body], rel)
	}
	for name, body := range inputs {
		if name == ".DS_Store" {
			continue
		}
		if len(seen[body]) != 1 {
			t.Errorf("%s found at %v", name, seen[body])
		}
	}

	want := map[string]string{
		"IMG_0001.jpg":            "Photos/2021/january/2021-01-01_00-00-00.jpg",
		"IMG_0002-edited.jpg":     "Photos/2021/august/2021-08-14_14-30-00.jpg",
		"20210815_143000.mp4":     "Photos/2021/august/2021-08-15_14-30-00.mp4",
		"VID_20210815_143000.mp4": "Photos/2021/august/2021-08-15_14-30-00(1).mp4",
		"randomname.mov":          "unmatched/randomname.mov",
		"IMG_0003.jpg":            "unmatched/IMG_0003.jpg",
		"IMG_0001.jpg.json":       "done/IMG_0001.jpg.json",
		"IMG_0002.jpg.json":       "done/IMG_0002.jpg.json",
		"IMG_0003.jpg.json":       "Takeout/Google Photos/Trip/IMG_0003.jpg.json",
	}
	for name, rel := range want {
		if got := seen[inputs[name]]; len(got) != 1 || got[0] != rel {
			t.Errorf("%s ended at %v, want %s", name, got, rel)
		}
	}
	mustNotExist(t, filepath.Join(root, ErrorDir))
}
