package cli

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/loomctl/loom/internal/assets"
	"github.com/loomctl/loom/internal/config"
)

const promptExt = ".prompt"

// loadDescriptors parses every embedded prompts/<kind>.prompt file into a
// kind → Descriptor map, keyed by the file's base name. Deployments that
// need custom subcontext kinds add more .prompt files to internal/assets;
// nothing else in the binary needs to change.
func loadDescriptors() (map[string]config.Descriptor, error) {
	out := make(map[string]config.Descriptor)
	err := fs.WalkDir(assets.Prompts, "prompts", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, promptExt) {
			return nil
		}
		data, err := assets.Prompts.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		desc, err := config.ParseDescriptor(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", p, err)
		}
		kind := strings.TrimSuffix(path.Base(p), promptExt)
		out[kind] = desc
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, ok := out["main"]; !ok {
		return nil, fmt.Errorf("no embedded prompts/main.prompt descriptor found")
	}
	return out, nil
}
