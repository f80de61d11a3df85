package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"uk.co.dudmesh.inbound/internal/boot"
	"uk.co.dudmesh.inbound/internal/model"
	"uk.co.dudmesh.inbound/internal/service/message"
)

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func formatTS(ts *time.Time) string {
	return lo.Ternary(ts == nil, "-", lo.FromPtr(ts).Format(time.RFC3339Nano))
}

func main() {
	bootConfig, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}
	flag.StringVar(&bootConfig.Database.DatabaseURL, "db", bootConfig.DatabaseURL(), "Path to the message database")
	flag.Parse()

	messageService, err := message.New(bootConfig)
	if err != nil {
		log.Fatalf("creating message service: %+v", err)
	}
	defer messageService.Close()

	stats, err := messageService.Stats(context.Background())
	if err != nil {
		log.Fatalf("computing stats: %+v", err)
	}

	summary := newTable("Metric", "Value")
	summary.AppendBulk([][]string{
		{"total_messages", strconv.Itoa(stats.TotalMessages)},
		{"senders_count", strconv.Itoa(stats.SendersCount)},
		{"first_message_ts", formatTS(stats.FirstMessageTS)},
		{"last_message_ts", formatTS(stats.LastMessageTS)},
	})
	summary.Render()

	if len(stats.MessagesPerSender) == 0 {
		return
	}

	os.Stdout.WriteString("\n")
	senders := newTable("Rank", "From", "Count")
	senders.AppendBulk(lo.Map(stats.MessagesPerSender, func(sender model.SenderCount, i int) []string {
		return []string{strconv.Itoa(i + 1), sender.Sender, strconv.Itoa(sender.Count)}
	}))
	senders.Render()
}
