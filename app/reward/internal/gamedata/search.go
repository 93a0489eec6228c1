package gamedata

import (
	"fmt"
	"strconv"
	"strings"
)

// SearchMatch 道具名称搜索结果
type SearchMatch struct {
	ID   int64
	Name string
}

func (m SearchMatch) String() string {
	return fmt.Sprintf("[Item] %s (ID: %d)", m.Name, m.ID)
}

// SearchItems 按名称子串 (忽略大小写) 搜索道具, 保持表顺序
func (x *Index) SearchItems(query string) []SearchMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []SearchMatch
	for _, it := range x.tables.Items {
		name, ok := x.names[it.LocalizeEtcID]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, SearchMatch{ID: it.ID, Name: name})
		}
	}
	return out
}

// InspectItems 输出匹配道具的详细信息, query 为数字时按 ID 查找, 否则按名称搜索
func (x *Index) InspectItems(query string) [][]string {
	if id, err := strconv.ParseInt(strings.TrimSpace(query), 10, 64); err == nil {
		it, ok := x.items[id]
		if !ok {
			return nil
		}
		name, ok := x.names[it.LocalizeEtcID]
		if !ok {
			name = "Unknown"
		}
		return [][]string{describeItem(it, name)}
	}

	var out [][]string
	for _, m := range x.SearchItems(query) {
		out = append(out, describeItem(x.items[m.ID], m.Name))
	}
	return out
}

func describeItem(it *ItemExcel, name string) []string {
	return []string{
		"Name: " + name,
		"ID: " + strconv.FormatInt(it.ID, 10),
		"Category: " + it.ItemCategory,
		"ImmediateUse: " + strconv.FormatBool(it.ImmediateUse),
		"UsingResultParcelType: " + it.UsingResultParcelType.String(),
		"UsingResultId: " + strconv.FormatInt(it.UsingResultID, 10),
		"Tags: " + strings.Join(it.Tags, ", "),
	}
}
