package acceptance

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// command renders one Command Protocol turn in the wire format the model
// is expected to emit (§3 "Structured Command Protocol"), matching the
// multiline conventions exercised in internal/orchestrator's tests.
func command(id int, verb string, args map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@@LOOM %d %s\n", id, verb)
	for k, v := range args {
		if strings.Contains(v, "\n") || v == "" {
			fmt.Fprintf(&b, "%s: <<<\n%s\n>>>\n", k, v)
		} else {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	}
	b.WriteString("\n")
	return b.String()
}

var _ = Describe("loom create-file scenario", func() {
	var tmpDir, repoDir string

	AfterEach(func() {
		cleanupTestRepo(repoDir, tmpDir)
	})

	It("creates a file, reports it, and integrates the proposed merge", func() {
		tmpDir, repoDir = setupTestRepo("loom-create-file")

		stub := newModelStub([]string{
			command(1, "OVERWRITE", map[string]string{
				"path":    "hello.txt",
				"content": "Hello, World!\n",
			}),
			command(2, "OUTPUT", map[string]string{
				"text": "Created hello.txt.",
			}),
			command(3, "PROPOSE_MERGE", map[string]string{
				"message": "Create hello.txt",
			}),
		})
		defer stub.Close()

		cmd := exec.Command(binaryPath, "-C", repoDir, "Create hello.txt containing Hello, World!")
		cmd.Env = append(os.Environ(),
			"OPENROUTER_API_KEY=test-token",
			"LOOM_MODEL_BASE_URL="+stub.URL,
		)
		cmd.Stdin = strings.NewReader("a\n\n\n")

		out, err := cmd.CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "loom run failed: %s", string(out))

		content, err := os.ReadFile(filepath.Join(repoDir, "hello.txt"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(Equal("Hello, World!\n"))

		Expect(string(out)).To(ContainSubstring("Created hello.txt."))
	})
})
