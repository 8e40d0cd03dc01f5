package services

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/yeremiapane/table-ordering/utils"
)

const (
	pdfMargin    = 15.0
	pdfRowHeight = 7.0
)

// WriteDailyReportPDF renders report as an A4 document.
func WriteDailyReportPDF(w io.Writer, report *DailyReport, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pdfMargin

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentWidth, 10, tr("Relatório Diário"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentWidth, 6, tr(fmt.Sprintf("Data: %s  |  Gerado em %s", report.Date, generatedAt.Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	drawTable(pdf, tr, "Resumo", []string{"Indicador", "Valor"}, [][]string{
		{"Total de pedidos", fmt.Sprintf("%d", report.TotalOrders)},
		{"Faturamento", utils.FormatCurrencyBRL(report.TotalRevenue)},
	}, contentWidth)

	itemRows := make([][]string, 0, len(report.TopItems))
	for _, it := range report.TopItems {
		itemRows = append(itemRows, []string{it.Name, fmt.Sprintf("%d un", it.Quantity)})
	}
	drawTable(pdf, tr, "Top 5 itens mais vendidos", []string{"Item", "Quantidade"}, itemRows, contentWidth)

	if png, err := topItemsChart(report.TopItems); err != nil {
		utils.ErrorLogger.Warnf("Rendering top items chart: %v", err)
	} else if png != nil {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("top-items", opts, bytes.NewReader(png))
		pdf.ImageOptions("top-items", pdfMargin, pdf.GetY(), contentWidth, contentWidth/2, true, opts, 0, "")
		pdf.Ln(4)
	}

	payRows := make([][]string, 0, len(report.PaymentMethods))
	for _, p := range report.PaymentMethods {
		payRows = append(payRows, []string{p.Label, fmt.Sprintf("%d", p.Count), utils.FormatCurrencyBRL(p.Total)})
	}
	drawTable(pdf, tr, "Formas de pagamento", []string{"Forma", "Pedidos", "Total"}, payRows, contentWidth)

	empRows := make([][]string, 0, len(report.Employees))
	for _, e := range report.Employees {
		empRows = append(empRows, []string{
			e.Username,
			fmt.Sprintf("%d", e.CompletedOrders),
			fmt.Sprintf("%d", e.CancelledOrders),
			utils.FormatCurrencyBRL(e.TotalRevenue),
		})
	}
	drawTable(pdf, tr, "Performance dos Funcionários", []string{"Funcionário", "Finalizados", "Cancelados", "Faturamento"}, empRows, contentWidth)

	return pdf.Output(w)
}

func drawTable(pdf *fpdf.Fpdf, tr func(string) string, title string, headers []string, rows [][]string, width float64) {
	colWidth := width / float64(len(headers))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(width, 8, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range headers {
		pdf.CellFormat(colWidth, pdfRowHeight, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	if len(rows) == 0 {
		pdf.CellFormat(width, pdfRowHeight, tr("Sem dados"), "1", 1, "C", false, 0, "")
	}
	for _, row := range rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, pdfRowHeight, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

// topItemsChart renders a bar chart PNG, or nil when there is nothing to plot.
func topItemsChart(items []ItemSales) ([]byte, error) {
	if len(items) == 0 {
		return nil, nil
	}

	maxQty := 0
	bars := make([]chart.Value, 0, len(items))
	for _, it := range items {
		bars = append(bars, chart.Value{Value: float64(it.Quantity), Label: it.Name})
		maxQty = max(maxQty, it.Quantity)
	}

	graph := chart.BarChart{
		Width:      800,
		Height:     400,
		BarWidth:   60,
		BarSpacing: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 30},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxQty) + 1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
