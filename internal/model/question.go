package model

import "encoding/json"

// Option 单个选项，text + 是否为正确答案
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect,omitempty"`
}

// swagger:model Question
type Question struct {
	BaseModel
	Category   string          `gorm:"size:50;not null;index;index:idx_category_difficulty" json:"category"`
	Difficulty string          `gorm:"size:50;not null;index;index:idx_category_difficulty" json:"difficulty"`
	Points     int             `gorm:"default:1" json:"points"`
	Text       string          `gorm:"type:text;not null" json:"question"`
	Options    json.RawMessage `gorm:"type:json" json:"options"` // JSON: []Option
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) DecodeOptions() ([]Option, error) {
	var opts []Option
	if len(q.Options) == 0 {
		return opts, nil
	}
	err := json.Unmarshal(q.Options, &opts)
	return opts, err
}

// CorrectAnswer 返回第一个被标记为正确的选项文本
func (q *Question) CorrectAnswer() (string, error) {
	opts, err := q.DecodeOptions()
	if err != nil {
		return "", err
	}
	for _, opt := range opts {
		if opt.IsCorrect {
			return opt.Text, nil
		}
	}
	return "", nil
}

// PublicOptions 返回不带正确标记的选项，用于答题页面
func (q *Question) PublicOptions() ([]Option, error) {
	opts, err := q.DecodeOptions()
	if err != nil {
		return nil, err
	}
	public := make([]Option, len(opts))
	for i, opt := range opts {
		public[i] = Option{Text: opt.Text}
	}
	return public, nil
}
