package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/delaneyj/classic/browser"
	"github.com/delaneyj/classic/reactive"
	"github.com/delaneyj/classic/route"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	cpuProfile = flag.String("cpuprofile", "", "write a CPU profile to this file")

	ww    = []int{1, 10, 100}
	hh    = []int{1, 10, 100}
	depth = []int{1, 4, 16, 64}
	iters = 100
)

func main() {
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkPropagate(false)
	benchmarkPropagate(true)
	benchmarkResolve(true)
}

func benchmarkPropagate(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Cells")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			tr := reactive.NewTracker()
			src := reactive.Signal(tr, 1)
			for i := 0; i < w; i++ {
				last := src
				for j := 0; j < h; j++ {
					prev, next := last, reactive.Signal(tr, 0)
					reactive.Track(tr, func() {
						next.SetValue(prev.Value() + 1)
					})
					last = next
				}
				reactive.OnChange(tr, last.Value, func(int, int) {})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.SetValue(src.Peek() + 1)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkResolve times route resolution against nested segment trees.
func benchmarkResolve(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Route resolution")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, d := range depth {
		win := browser.New()
		r, err := route.New(win)
		if err != nil {
			log.Fatal(err)
		}

		var body, path strings.Builder
		for i := 0; i < d; i++ {
			fmt.Fprintf(&body, `<cc-route path="l%d">`, i)
			fmt.Fprintf(&path, "/l%d", i)
		}
		body.WriteString("<cc-route></cc-route>")
		body.WriteString(strings.Repeat("</cc-route>", d))
		if err := win.LoadHTML("http://bench.local/", "<html><body>"+body.String()+"</body></html>"); err != nil {
			log.Fatal(err)
		}

		for _, suffix := range []string{"", "/miss/deeper"} {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			href := path.String() + suffix
			for i := 0; i < iters; i++ {
				win.Do(func() {
					start := time.Now()
					if _, ok := r.Resolve(href); !ok {
						log.Fatalf("resolve %s failed", href)
					}
					tach.AddTime(time.Since(start))
				})
			}
			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("resolve: depth %d%s", d, suffix),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
		r.Close()
	}

	if shouldRender {
		tbl.Render()
	}
}
