package service

import (
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/cwrk-planet/watch-together/internal/domain"
)

const videoIDLength = 24

// ParseVideoID достаёт id видео из ссылки: ?v=<id> или последний сегмент пути.
func ParseVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrInvalidVideo
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", domain.ErrInvalidVideo
	}

	id := u.Query().Get("v")
	if id == "" {
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		id = segs[len(segs)-1]
	}
	if !isObjectID(id) {
		return "", domain.ErrInvalidVideo
	}

	return strings.ToLower(id), nil
}

func isObjectID(s string) bool {
	if len(s) != videoIDLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
