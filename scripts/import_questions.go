// 题库导入脚本
//
// 从 JSON 文件批量导入测验题目，并在导入前校验每道题恰好有一个正确选项。
// 带 -replace 参数时先清空现有题库再导入。
//
// 用法: go run scripts/import_questions.go -file data/questions.json [-replace]

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/internal/model"
	"quiz_icc_backend/internal/repository"
	"quiz_icc_backend/pkg/database"
	"quiz_icc_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

type questionImport struct {
	Category   string         `json:"category"`
	Difficulty string         `json:"difficulty"`
	Points     int            `json:"points"`
	Question   string         `json:"question"`
	Options    []model.Option `json:"options"`
}

func main() {
	file := flag.String("file", "data/questions.json", "题目 JSON 文件路径")
	replace := flag.Bool("replace", false, "导入前清空现有题库")
	flag.Parse()

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Question{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("无法读取题目文件 %s: %v", *file, err)
	}

	var imports []questionImport
	if err := json.Unmarshal(raw, &imports); err != nil {
		log.Fatalf("解析题目文件失败: %v", err)
	}
	if len(imports) == 0 {
		log.Fatal("题目文件为空")
	}

	questions, err := buildQuestions(cfg.Quiz, imports)
	if err != nil {
		log.Fatalf("题目校验失败: %v", err)
	}

	repo := repository.NewQuestionRepository(db)

	if *replace {
		log.Println("清空现有题库...")
		if err := repo.DeleteAll(); err != nil {
			log.Fatalf("清空题库失败: %v", err)
		}
	}

	if err := repo.CreateBatch(questions); err != nil {
		log.Fatalf("批量插入失败: %v", err)
	}

	log.Printf("导入完成，共 %d 道题目", len(questions))
	printStats(cfg.Quiz, questions)
}

// buildQuestions 校验并转换导入数据。每道题必须恰好一个正确选项，
// 且分类/难度取值必须在配置枚举内。
func buildQuestions(quiz config.QuizConfig, imports []questionImport) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(imports))
	for i, item := range imports {
		if item.Question == "" {
			return nil, fmt.Errorf("第 %d 题缺少题干", i+1)
		}
		if !contains(quiz.Categories, item.Category) {
			return nil, fmt.Errorf("第 %d 题分类无效: %q", i+1, item.Category)
		}
		if !contains(quiz.Difficulties, item.Difficulty) {
			return nil, fmt.Errorf("第 %d 题难度无效: %q", i+1, item.Difficulty)
		}
		if len(item.Options) < 2 {
			return nil, fmt.Errorf("第 %d 题选项不足: %d", i+1, len(item.Options))
		}
		correct := 0
		for _, opt := range item.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, fmt.Errorf("第 %d 题必须恰好一个正确选项，实际 %d 个", i+1, correct)
		}

		opts, err := json.Marshal(item.Options)
		if err != nil {
			return nil, fmt.Errorf("第 %d 题选项序列化失败: %v", i+1, err)
		}
		points := item.Points
		if points <= 0 {
			points = 1
		}
		questions = append(questions, model.Question{
			Category:   item.Category,
			Difficulty: item.Difficulty,
			Points:     points,
			Text:       item.Question,
			Options:    opts,
		})
	}
	return questions, nil
}

func printStats(quiz config.QuizConfig, questions []model.Question) {
	counts := make(map[string]int)
	for _, q := range questions {
		counts[q.Category+"/"+q.Difficulty]++
	}
	for _, cat := range quiz.Categories {
		for _, diff := range quiz.Difficulties {
			if n := counts[cat+"/"+diff]; n > 0 {
				log.Printf("  %s / %s: %d 题", cat, diff, n)
			}
		}
	}
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}
