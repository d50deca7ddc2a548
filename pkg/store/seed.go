package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	cectx "github.com/easyops/contextengine/pkg/context"
)

// seedFile 是 YAML 种子文件的结构
type seedFile struct {
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	ID         string    `yaml:"id"`
	Type       string    `yaml:"type"`
	Name       string    `yaml:"name"`
	Content    string    `yaml:"content"`
	ProjectID  string    `yaml:"projectId"`
	Timestamp  time.Time `yaml:"timestamp"`
	Confidence *float64  `yaml:"confidence"`
	Semantic   *float64  `yaml:"semantic"`
}

// ParseSeed 解析 YAML 格式的条目列表
//
//	items:
//	  - id: g1
//	    type: goal
//	    content: 交付 v2 版本
//	    confidence: 0.9
//
// 省略 confidence 时为 1；省略 name 时使用 id。
func ParseSeed(data []byte) ([]cectx.CandidateItem, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	items := make([]cectx.CandidateItem, 0, len(f.Items))
	for i, s := range f.Items {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: seed item %d has no id", ErrInvalidInput, i)
		}

		name := s.Name
		if name == "" {
			name = s.ID
		}
		confidence := 1.0
		if s.Confidence != nil {
			confidence = *s.Confidence
		}

		items = append(items, cectx.CandidateItem{
			ID:        s.ID,
			Type:      cectx.ItemType(s.Type),
			Name:      name,
			Content:   s.Content,
			ProjectID: s.ProjectID,
			Signals: cectx.Signals{
				Timestamp:  s.Timestamp,
				Confidence: confidence,
				Semantic:   s.Semantic,
			},
		})
	}
	return items, nil
}

// LoadSeedFile 从 YAML 文件加载条目
func LoadSeedFile(path string) ([]cectx.CandidateItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}
