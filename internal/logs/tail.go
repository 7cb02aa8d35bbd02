package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const followPollInterval = 250 * time.Millisecond

// TailOptions selects which records Tail returns.
type TailOptions struct {
	// Offset < 0 returns the last Limit records; otherwise reading starts at
	// the byte offset returned by a previous call.
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
	// Match keeps only records containing the substring.
	Match string
}

// TailResult holds the records read and the offset to resume from.
type TailResult struct {
	Records []Record
	Offset  int64
}

// Tail reads records from the run log at path. A missing file yields no
// records and offset zero.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	offset := opts.Offset
	if offset < 0 {
		records, end, err := readLastRecords(path, opts.Limit, opts.Match)
		if err != nil {
			return result, err
		}
		if len(records) > 0 || !opts.Follow || opts.Wait == 0 {
			return TailResult{Records: records, Offset: end}, nil
		}
		offset = end
	} else if offset > info.Size() {
		offset = info.Size()
	}

	records, end, err := readForward(path, offset, opts.Match)
	if err != nil {
		return result, err
	}
	if len(records) > 0 || !opts.Follow || opts.Wait == 0 {
		return TailResult{Records: records, Offset: end}, nil
	}
	return waitForRecords(ctx, path, end, opts.Wait, opts.Match)
}

func readLastRecords(path string, limit int, match string) ([]Record, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	ring := make([]Record, limit)
	count, idx := 0, 0
	g := grouper{emit: func(r Record) {
		if !r.Contains(match) {
			return
		}
		ring[idx] = r
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}}
	end, err := scanLines(file, g.add)
	if err != nil {
		return nil, 0, err
	}
	g.flush()

	records := make([]Record, count)
	if count == limit {
		for i := 0; i < count; i++ {
			records[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(records, ring[:count])
	}
	return records, end, nil
}

func readForward(path string, offset int64, match string) ([]Record, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	var records []Record
	g := grouper{emit: func(r Record) {
		if r.Contains(match) {
			records = append(records, r)
		}
	}}
	read, err := scanLines(file, g.add)
	if err != nil {
		return nil, 0, err
	}
	g.flush()
	return records, offset + read, nil
}

// scanLines feeds each complete line to fn and returns the number of bytes
// consumed. A trailing line without a newline is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return consumed, nil
		}
		if err != nil {
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		fn(trimNewline(line))
	}
}

func trimNewline(line string) string {
	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

func waitForRecords(ctx context.Context, path string, offset int64, wait time.Duration, match string) (TailResult, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}

		records, end, err := readForward(path, result.Offset, match)
		if err != nil {
			return result, err
		}
		result.Offset = end
		if len(records) > 0 {
			result.Records = records
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}
	}
}
