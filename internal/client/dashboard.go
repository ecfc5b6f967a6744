package client

import (
	"fmt"
	"io"
	"text/tabwriter"

	"neontask/internal/domain"
)

const MsgNoOperations = "NO OPERATIONS DETECTED"

// 统计栏顺序固定
var statTabs = []string{"ALL", string(domain.StatusStandby), string(domain.StatusInProgress), string(domain.StatusExecuted)}

// Stats 每个状态的数量，"ALL" 为总数
func Stats(tasks []domain.Task) map[string]int {
	m := make(map[string]int, len(statTabs))
	for _, tab := range statTabs {
		m[tab] = 0
	}
	m["ALL"] = len(tasks)
	for _, t := range tasks {
		m[string(t.Status)]++
	}
	return m
}

// FilterStatus status 为空或 "ALL" 时原样返回
func FilterStatus(tasks []domain.Task, status string) []domain.Task {
	if status == "" || status == "ALL" {
		return tasks
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if string(t.Status) == status {
			out = append(out, t)
		}
	}
	return out
}

// RenderDashboard 统计栏 + 任务表；统计基于 all，表格只显示 shown
func RenderDashboard(w io.Writer, all, shown []domain.Task) error {
	stats := Stats(all)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, tab := range statTabs {
		label := tab
		if tab == "ALL" {
			label = "ALL OPS"
		}
		fmt.Fprintf(tw, "[%s %d]\t", label, stats[tab])
	}
	fmt.Fprintln(tw)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if len(shown) == 0 {
		_, err := fmt.Fprintln(w, MsgNoOperations)
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tSTATUS\tTITLE\tDUE")
	for _, t := range shown {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.UTC().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Priority, t.Status, t.Title, due)
		if t.Description != nil && *t.Description != "" {
			fmt.Fprintf(tw, "\t\t\t  %s\t\n", *t.Description)
		}
	}
	return tw.Flush()
}
