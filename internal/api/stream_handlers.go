package api

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"

	"demoshelf/internal/library"
)

// Music serves /music/{project}/{file} with single-range HTTP semantics.
func (h *Handler) Music(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, r, "GET, HEAD")
		return
	}
	trimmed := strings.TrimPrefix(r.URL.Path, "/music/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusNotFound, library.ErrNotFound)
		return
	}
	path, err := h.Library.ResolveDemoPath(parts[0], parts[1])
	if err != nil {
		h.writeLibraryError(w, err)
		return
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusNotFound, library.ErrNotFound)
		return
	}
	if err != nil {
		h.logger().Error("open demo failed", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("internal error"))
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || !stat.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, library.ErrNotFound)
		return
	}
	size := stat.Size()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentTypeFor(parts[1]))

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		written, _ := io.Copy(w, file)
		h.metrics().AddStreamedBytes(written)
		return
	}

	start, end, ok := parseRange(rangeHeader, size)
	if !ok {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	length := end - start + 1
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := file.Seek(start, io.SeekStart); err != nil {
		return
	}
	written, _ := io.CopyN(w, file, length)
	h.metrics().AddStreamedBytes(written)
}

// parseRange parses a single-range header of the form "bytes=<start>-<end>"
// where end defaults to the last byte. Both bounds must lie in [0, size).
// Multi-range and suffix forms are unsatisfiable.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	spec, found := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !found {
		return 0, 0, false
	}
	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	if trimmed := strings.TrimSpace(endStr); trimmed == "" {
		end = size - 1
	} else {
		end, err = strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, 0, false
		}
	}
	if start < 0 || start >= size || end < start || end >= size {
		return 0, 0, false
	}
	return start, end, true
}

func contentTypeFor(filename string) string {
	if library.IsDemoFile(filename) {
		return "audio/wav"
	}
	return "application/octet-stream"
}
