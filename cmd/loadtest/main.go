// Нагрузочный прогон движка метрик. Все PR бьют в один репозиторий и в
// соседние недели, чтобы максимально часто сталкивать конкурентное создание
// одного и того же бакета.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const (
	targetHost = "http://localhost:8080"
	repoName   = "load-repo"
	rps        = 25
	duration   = 1 * time.Minute
)

type reviewPayload struct {
	Author      string    `json:"author"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type prPayload struct {
	Number           int64           `json:"number"`
	Title            string          `json:"title"`
	State            string          `json:"state"`
	Draft            bool            `json:"draft"`
	CreatedAt        time.Time       `json:"created_at"`
	ReadyForReviewAt *time.Time      `json:"ready_for_review_at"`
	MergedAt         *time.Time      `json:"merged_at"`
	ClosedAt         *time.Time      `json:"closed_at"`
	Reviews          []reviewPayload `json:"reviews"`
}

var httpc = &http.Client{Timeout: 10 * time.Second}

func postJSON(url string, body any) (int, error) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// Seed
func seedData() error {
	log.Println("Seeding: creating repository...")

	status, err := postJSON(targetHost+"/repositories", map[string]string{"name": repoName})
	if err != nil {
		return err
	}
	if status >= 400 && status != http.StatusConflict {
		return fmt.Errorf("repositories returned %d", status)
	}
	return nil
}

// randomPR генерирует PR с метками, раскиданными по последним восьми неделям.
func randomPR(number int64) prPayload {
	created := time.Now().AddDate(0, 0, -rand.Intn(8*7)).Add(-time.Duration(rand.Intn(24)) * time.Hour)
	ready := created.Add(time.Duration(1+rand.Intn(48)) * time.Hour)

	pr := prPayload{
		Number:           number,
		Title:            fmt.Sprintf("Load PR %d", number),
		State:            "OPEN",
		CreatedAt:        created,
		ReadyForReviewAt: &ready,
	}

	if rand.Float64() < 0.7 {
		reviewAt := ready.Add(time.Duration(1+rand.Intn(72)) * time.Hour)
		pr.Reviews = append(pr.Reviews, reviewPayload{
			Author:      fmt.Sprintf("reviewer-%d", rand.Intn(10)),
			State:       "APPROVED",
			SubmittedAt: reviewAt,
		})
	}
	if rand.Float64() < 0.5 {
		merged := ready.Add(time.Duration(2+rand.Intn(96)) * time.Hour)
		pr.State = "CLOSED"
		pr.MergedAt = &merged
		pr.ClosedAt = &merged
	}
	return pr
}

// Targeter
func makeTargeter() vegeta.Targeter {
	var counter int64
	return func(t *vegeta.Target) error {
		r := rand.Float64()

		// 70% загрузка PR — основной конкурентный путь
		if r < 0.70 {
			counter++
			// узкий диапазон номеров: часть запросов апсертит один и тот же PR
			number := counter%500 + 1
			body, _ := json.Marshal(randomPR(number))
			t.Method = http.MethodPost
			t.URL = fmt.Sprintf("%s/repositories/%s/pull-requests", targetHost, repoName)
			t.Body = body
			t.Header = map[string][]string{"Content-Type": {"application/json"}}
			return nil
		}

		// 20% чтение недельной статистики
		if r < 0.90 {
			t.Method = http.MethodGet
			t.URL = fmt.Sprintf("%s/repositories/%s/weeks", targetHost, repoName)
			t.Body = nil
			t.Header = map[string][]string{"Accept": {"application/json"}}
			return nil
		}

		// 8% сводка по всем репозиториям
		if r < 0.98 {
			t.Method = http.MethodGet
			t.URL = targetHost + "/stats/overview?weeks=12"
			t.Body = nil
			t.Header = map[string][]string{"Accept": {"application/json"}}
			return nil
		}

		// 2% пересчет статистики
		t.Method = http.MethodPost
		t.URL = fmt.Sprintf("%s/repositories/%s/generate", targetHost, repoName)
		t.Body = nil
		t.Header = map[string][]string{"Content-Type": {"application/json"}}
		return nil
	}
}

// Attack
func runAttack() {
	rate := vegeta.Rate{Freq: rps, Per: time.Second}
	attacker := vegeta.NewAttacker()
	targeter := makeTargeter()

	var metrics vegeta.Metrics

	log.Printf("Starting attack: %s for %s", targetHost, duration)
	for res := range attacker.Attack(targeter, rate, duration, "velocity-load") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Println("=== Results ===")
	fmt.Printf("Requests: %d\n", metrics.Requests)
	fmt.Printf("Success rate: %.4f%%\n", metrics.Success*100)
	fmt.Printf("Latency mean: %s\n", metrics.Latencies.Mean)
	fmt.Printf("Latency P95: %s\n", metrics.Latencies.P95)
	fmt.Printf("Latency P99: %s\n", metrics.Latencies.P99)
}

func main() {
	rand.Seed(time.Now().UnixNano())

	if err := seedData(); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	runAttack()
}
