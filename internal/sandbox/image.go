package sandbox

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// imageTagPrefix names every image loom builds, so pruning and inspection
// can filter on it.
const imageTagPrefix = "loom-sandbox"

// cacheKey computes the stable cache key for a base image plus its
// build steps (SPEC_FULL.md "Sandbox image cache"):
// sha256(base_image + "\n" + join(build_steps, "\n")), hex, first 16 bytes.
func cacheKey(baseImage string, buildSteps []string) string {
	h := sha256.Sum256([]byte(baseImage + "\n" + strings.Join(buildSteps, "\n")))
	return hex.EncodeToString(h[:16])
}

// imageTag returns the tag an image for this (baseImage, buildSteps) pair
// is built and cached under.
func imageTag(baseImage string, buildSteps []string) string {
	return fmt.Sprintf("%s:%s", imageTagPrefix, cacheKey(baseImage, buildSteps))
}

// dockerfile renders the generated build instructions for baseImage and
// buildSteps.
func dockerfile(baseImage string, buildSteps []string) string {
	var sb strings.Builder
	sb.WriteString("FROM " + baseImage + "\n")
	for _, step := range buildSteps {
		sb.WriteString("RUN " + step + "\n")
	}
	return sb.String()
}

// ensureImage builds (or reuses) the image for baseImage/buildSteps and
// returns its tag.
func (r *Runner) ensureImage(ctx context.Context, baseImage string, buildSteps []string) (string, error) {
	tag := imageTag(baseImage, buildSteps)
	if r.imageExists(ctx, tag) {
		return tag, nil
	}

	cmd := r.command(ctx, "build", "-t", tag, "-f", "-", ".")
	cmd.Stdin = bytes.NewBufferString(dockerfile(baseImage, buildSteps))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("building sandbox image: %w: %s", err, stderr.String())
	}
	return tag, nil
}
