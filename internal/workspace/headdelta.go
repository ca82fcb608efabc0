package workspace

import "fmt"

// CommitSummary is one new commit observed between two HEAD-delta checks.
type CommitSummary struct {
	Hash         string
	Subject      string
	ChangedPaths []string
}

// HeadDelta reports the commits that landed on workspacePath's HEAD since
// lastHead (oldest first) and the new HEAD hash, for Context's
// HEAD-delta injection (§4.F). If lastHead is the current HEAD, it
// returns no commits.
func HeadDelta(workspacePath, lastHead string) (commits []CommitSummary, newHead string, err error) {
	r := newRepo(workspacePath)
	head, err := r.headCommit("HEAD")
	if err != nil {
		return nil, "", fmt.Errorf("resolving HEAD: %w", err)
	}
	if head == lastHead {
		return nil, head, nil
	}

	hashes, err := r.commitsBetween(lastHead, head)
	if err != nil {
		return nil, "", fmt.Errorf("listing commits since %s: %w", shortHash(lastHead), err)
	}

	for _, h := range hashes {
		subject, err := r.commitSubject(h)
		if err != nil {
			return nil, "", fmt.Errorf("reading subject for %s: %w", shortHash(h), err)
		}
		paths, err := r.filesChangedInCommit(h)
		if err != nil {
			return nil, "", fmt.Errorf("reading changed paths for %s: %w", shortHash(h), err)
		}
		commits = append(commits, CommitSummary{Hash: h, Subject: subject, ChangedPaths: paths})
	}
	return commits, head, nil
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
