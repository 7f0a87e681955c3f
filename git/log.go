package git

import (
	"context"
	"strconv"
	"strings"
)

// CommitRecord is one line of structured history.
type CommitRecord struct {
	Hash    string
	Author  string
	Date    string
	Subject string
}

// Log returns up to limit commits reachable from ref, newest first. Fields
// are NUL-separated so subjects containing any printable text parse cleanly.
func (s *Service) Log(ctx context.Context, dir, ref string, limit int) ([]CommitRecord, *Error) {
	if limit <= 0 {
		limit = 20
	}
	args := []string{"log", "--format=%H%x00%an%x00%aI%x00%s", "-n", strconv.Itoa(limit)}
	if ref != "" {
		args = append(args, ref)
	}
	out, gerr := s.exec(ctx, "log", dir, args...)
	if gerr != nil {
		return nil, gerr
	}
	var records []CommitRecord
	for _, line := range strings.Split(out.Stdout, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\x00", 4)
		if len(fields) != 4 {
			continue
		}
		records = append(records, CommitRecord{
			Hash:    fields[0],
			Author:  fields[1],
			Date:    fields[2],
			Subject: fields[3],
		})
	}
	return records, nil
}
