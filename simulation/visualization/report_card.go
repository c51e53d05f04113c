package visualization

import (
	"fmt"
	"os"
	"sort"

	svg "github.com/ajstarks/svgo"
	"github.com/GaryBoone/GoStats/stats"
)

const border = 5
const barHeight = 14
const barSpacing = 2
const barBoxWidth = 420

const headerHeight = 100

const graphWidth = 300
const graphTextX = 50
const graphBinX = 55
const maxBinLength = graphWidth - graphBinX

const ReportCardWidth = border*3 + barBoxWidth + graphWidth
const ReportCardHeight = border*3 + 300

type SVGReport struct {
	SVG *svg.SVG
	f   *os.File

	hammerPrices []float64
	sold         float64
	performed    float64

	width  int
	height int
}

func StartSVGReport(path string, width, height int) (*SVGReport, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := svg.New(f)
	s.Start(width*ReportCardWidth, headerHeight+height*ReportCardHeight)
	return &SVGReport{
		f:      f,
		SVG:    s,
		width:  width,
		height: height,
	}, nil
}

func (r *SVGReport) Done() error {
	r.drawTotals()
	r.SVG.End()
	return r.f.Close()
}

func (r *SVGReport) DrawHeader(header string) {
	r.SVG.Text(border, 40, header, `text-anchor:start;font-size:32px;font-family:Helvetica Neue`)
}

func (r *SVGReport) drawTotals() {
	r.SVG.Text(border, 90, fmt.Sprintf("Auctions: %.0f | Sold: %.0f | Takings: %.2f",
		r.performed, r.sold, stats.StatsSum(r.hammerPrices)),
		`text-anchor:start;font-size:32px;font-family:Helvetica Neue`)
}

func (r *SVGReport) DrawReportCard(x, y int, report *Report) {
	r.SVG.Translate(x*ReportCardWidth, headerHeight+y*ReportCardHeight)

	r.drawPriceBars(report)
	yBottom := r.drawHammerHistogram(report)
	r.drawText(report, yBottom+barSpacing*4)

	for _, result := range report.Results {
		if result.HasWinner() {
			r.hammerPrices = append(r.hammerPrices, result.FinalPrice)
		}
	}
	r.sold += float64(report.AuctionsSold())
	r.performed += float64(report.AuctionsPerformed())

	r.SVG.Gend()
}

// drawPriceBars plots one row per auction: the opening price as a light
// bar, the hammer price over it in green, or red for no sale.
func (r *SVGReport) drawPriceBars(report *Report) {
	maxPrice := 1.0
	for _, announcement := range report.Announcements {
		if announcement.Metadata.StartingPrice > maxPrice {
			maxPrice = announcement.Metadata.StartingPrice
		}
	}
	for _, result := range report.Results {
		if result.FinalPrice > maxPrice {
			maxPrice = result.FinalPrice
		}
	}
	scale := float64(barBoxWidth-2*border) / maxPrice

	y := border
	for _, result := range report.Results {
		if start, found := report.StartPriceOf(result.AuctionID); found {
			r.SVG.Rect(border, y, int(start*scale), barHeight, "fill:#eee")
		}
		if result.HasWinner() {
			r.SVG.Rect(border, y, int(result.FinalPrice*scale), barHeight, "fill:#2a2")
			r.SVG.Text(border+2, y+barHeight-4, result.Winner,
				`text-anchor:start;font-size:10px;font-family:Helvetica Neue;fill:#fff`)
		} else {
			r.SVG.Rect(border, y, border, barHeight, "fill:#c33")
		}
		y += barHeight + barSpacing
	}
}

func (r *SVGReport) drawHammerHistogram(report *Report) int {
	prices := []float64{}
	for _, result := range report.Results {
		if result.HasWinner() {
			prices = append(prices, result.FinalPrice)
		}
	}
	sort.Float64s(prices)

	bins := binUp([]float64{0, 50, 100, 200, 400, 800, 1600, 1e9}, prices)
	labels := []string{"<50", "50-100", "100-200", "200-400", "400-800", "800-1600", ">1600"}

	r.SVG.Translate(border*2+barBoxWidth, border)
	yBottom := r.drawHistogram(bins, labels)
	r.SVG.Gend()

	return yBottom + border
}

func (r *SVGReport) drawText(report *Report, y int) {
	hammer := report.HammerPriceStats()
	movement := report.PriceMovementStats()

	lines := []string{
		fmt.Sprintf("%d auctions, %d sold (%.0f%%)", report.AuctionsPerformed(), report.AuctionsSold(), report.SellThroughRate()*100),
		fmt.Sprintf("%.2fs (%.2f a/s)", report.Duration.Seconds(), report.AuctionsPerSecond()),
		fmt.Sprintf("Hammer: %.1f ± %.1f | %.0f - %.0f", hammer.Mean, hammer.StdDev, hammer.Min, hammer.Max),
		fmt.Sprintf("Movement: %.2f ± %.2f", movement.Mean, movement.StdDev),
	}

	r.SVG.Translate(border*2+barBoxWidth, y)
	r.SVG.Gstyle("font-family:Helvetica Neue")
	r.SVG.Textlines(8, 8, lines, 16, 18, "#333", "start")
	r.SVG.Gend()
	r.SVG.Gend()
}

func (r *SVGReport) drawHistogram(bins []float64, labels []string) int {
	y := 0
	for i, percentage := range bins {
		r.SVG.Rect(graphBinX, y, maxBinLength, barHeight, `fill:#eee`)
		r.SVG.Text(graphTextX, y+barHeight-4, labels[i], `text-anchor:end;font-size:10px;font-family:Helvetica Neue`)
		if percentage > 0 {
			r.SVG.Rect(graphBinX, y, int(percentage*float64(maxBinLength)), barHeight, `fill:#333`)
			r.SVG.Text(graphBinX+barSpacing, y+barHeight-4, fmt.Sprintf("%.1f%%", percentage*100.0), `text-anchor:start;font-size:10px;font-family:Helvetica Neue;fill:#fff`)
		}
		y += barHeight + barSpacing
	}

	return y
}

func binUp(binBoundaries []float64, sortedData []float64) []float64 {
	bins := make([]float64, len(binBoundaries)-1)
	if len(sortedData) == 0 {
		return bins
	}

	currentBin := 0
	for _, d := range sortedData {
		for binBoundaries[currentBin+1] < d {
			currentBin += 1
		}
		bins[currentBin] += 1
	}

	for i := range bins {
		bins[i] = (bins[i] / float64(len(sortedData)))
	}

	return bins
}
