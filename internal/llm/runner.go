// Package llm 基于 eino 的外部服务适配器：结构化故事生成和参考图外貌分析。
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// runner 编译好的单节点对话图
type runner struct {
	graph compose.Runnable[[]*schema.Message, *schema.Message]
}

func newRunner(ctx context.Context, name string, cm model.BaseChatModel) (*runner, error) {
	if cm == nil {
		return nil, fmt.Errorf("%s: chat model required", name)
	}
	graph := compose.NewGraph[[]*schema.Message, *schema.Message]()
	if err := graph.AddChatModelNode("model", cm); err != nil {
		return nil, fmt.Errorf("failed to add model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "model"); err != nil {
		return nil, fmt.Errorf("failed to add edge: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("failed to add edge: %w", err)
	}
	r, err := graph.Compile(ctx, compose.WithGraphName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to compile graph: %w", err)
	}
	return &runner{graph: r}, nil
}

func (r *runner) run(ctx context.Context, messages []*schema.Message) (string, error) {
	res, err := r.graph.Invoke(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("graph invocation failed: %w", err)
	}
	if res == nil || strings.TrimSpace(res.Content) == "" {
		return "", fmt.Errorf("empty model response")
	}
	return res.Content, nil
}

// decodeJSON 去掉 markdown 代码块后解析 JSON
func decodeJSON(content string, out any) error {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("failed to unmarshal: %w, raw: %s", err, truncate(cleaned, 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
