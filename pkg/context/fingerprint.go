package context

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"github.com/zeebo/blake3"
)

type fingerprintInput struct {
	ContextXML string   `json:"contextXml"`
	Sources    []Source `json:"sources"`
}

// Fingerprint 计算组装结果的摘要：
// {contextXml, sources} 的 RFC 8785 规范化 JSON 的 BLAKE3 十六进制值。
// 相同输入的两次组装得到相同指纹。
func Fingerprint(contextXML string, sources []Source) (string, error) {
	if sources == nil {
		sources = []Source{}
	}

	raw, err := json.Marshal(fingerprintInput{
		ContextXML: contextXML,
		Sources:    sources,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint: marshal: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("fingerprint: canonicalize: %w", err)
	}

	sum := blake3.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
