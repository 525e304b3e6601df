package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Result 记录单次请求的 HTTP 结果，便于聚合统计。
type Result struct {
	Status int
	Body   string
	Err    error
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	partID := flag.Int("part", 1, "part id")
	qty := flag.Int("qty", 1, "qty per order")
	stockCheck := flag.Bool("stock", true, "check availability after test")

	// 超卖测试参数：200 个用户并发下单抢同一零件
	nUsers := flag.Int("users", 200, "distinct users")
	concurrency := flag.Int("c", 50, "max concurrency")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	// 1) 不超卖测试：不同 user 并发下单，成功数不应超过 可售数量/qty
	fmt.Printf("start oversell test: part=%d qty=%d users=%d concurrency=%d\n",
		*partID, *qty, *nUsers, *concurrency)
	results := runPlaceOrders(client, *baseURL, *partID, *qty, *nUsers, *concurrency)
	printSummary("oversell", results)

	if *stockCheck {
		available, err := getAvailability(client, *baseURL, *partID)
		if err != nil {
			fmt.Println("availability check err:", err)
		} else {
			fmt.Println("final availability:", available)
		}
	}

	// 2) 限流测试：同一个 user 重复下单（更容易触发 429）
	fmt.Println("\nstart rate limit test: same user (10001), 50 requests, concurrency 50")
	results2 := runPlaceOrdersSameUser(client, *baseURL, *partID, *qty, 10001, 50, 50)
	printSummary("rate_limit", results2)
}

type orderReq struct {
	UserID int64       `json:"user_id"`
	Items  []orderLine `json:"items"`
}

type orderLine struct {
	PartID int `json:"part_id"`
	Qty    int `json:"qty"`
}

func runPlaceOrders(client *http.Client, baseURL string, partID, qty, nUsers, concurrency int) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, nUsers)

	for i := 0; i < nUsers; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			req := orderReq{UserID: int64(idx + 1), Items: []orderLine{{PartID: partID, Qty: qty}}}
			results[idx] = placeOnce(client, baseURL, req)
		}(i)
	}

	wg.Wait()
	return results
}

func runPlaceOrdersSameUser(client *http.Client, baseURL string, partID, qty int, userID int64, total, concurrency int) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, total)

	for i := 0; i < total; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			req := orderReq{UserID: userID, Items: []orderLine{{PartID: partID, Qty: qty}}}
			results[idx] = placeOnce(client, baseURL, req)
		}(i)
	}

	wg.Wait()
	return results
}

func placeOnce(client *http.Client, baseURL string, req orderReq) Result {
	b, _ := json.Marshal(req)
	url := fmt.Sprintf("%s/api/orders", baseURL)
	httpReq, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return Result{Status: resp.StatusCode, Body: string(body)}
}

// printSummary 聚合输出不同状态码分布。
func printSummary(name string, results []Result) {
	count := map[int]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
	}
	fmt.Printf("[%s] http status summary:\n", name)
	for _, code := range []int{200, 201, 400, 404, 429, 500} {
		if count[code] > 0 {
			fmt.Printf("  %d -> %d\n", code, count[code])
		}
	}
	if errCount > 0 {
		fmt.Printf("  errors -> %d\n", errCount)
	}
}

// getAvailability 压测后查询可售数量，校验是否出现超卖（不应为负）。
func getAvailability(client *http.Client, baseURL string, partID int) (int64, error) {
	url := fmt.Sprintf("%s/api/parts/%d/stock", baseURL, partID)
	resp, err := client.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}

	var out struct {
		Code int `json:"code"`
		Data struct {
			Available int64 `json:"available"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return 0, fmt.Errorf("decode: %w body=%s", err, string(b))
	}
	return out.Data.Available, nil
}
