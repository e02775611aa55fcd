package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/store"
	"tableflip.dev/nodewatch/pkg/timeutil"
)

type PrettyPrint struct {
	// Out defaults to color.Output.
	Out io.Writer
	// Now decides whether a schedule window is currently in force.
	Now func() time.Time
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now == nil {
		return time.Now()
	}
	return pp.Now()
}

func (pp *PrettyPrint) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(pp.out(), format, a...)
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " device")
	default:
		_, _ = c.Fprintln(pp.out(), " devices")
	}
}

// Devices prints one row per record in the order given.
func (pp *PrettyPrint) Devices(records ...device.Record) {
	if len(records) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 32
	tbl.AddRow(bold.Sprint("IP"), bold.Sprint("MAC"), bold.Sprint("VENDOR"), bold.Sprint("CATEGORY"),
		bold.Sprint("UP KB/s"), bold.Sprint("DOWN KB/s"), bold.Sprint("RULE"))

	now := pp.now()
	for _, r := range records {
		status := r.Status()
		if r.Blocked {
			status = red.Sprint(status)
		}
		rule := ""
		if r.HasSchedule() {
			rule = r.ScheduleStart + "-" + r.ScheduleEnd
			if in, err := timeutil.InWindow(r.ScheduleStart, r.ScheduleEnd, now); err == nil && in && !r.Blocked {
				rule = yellow.Sprint(rule + " SCHED")
			}
		}
		cells := []interface{}{r.Address(), r.MAC, r.Vendor, status, rate(r.UpRate), rate(r.DownRate), rule}
		if r.Stale {
			for i, c := range cells {
				cells[i] = faint.Sprint(c)
			}
		}
		tbl.AddRow(cells...)
	}
	tbl.RightAlign(4)
	tbl.RightAlign(5)

	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Totals prints the network-wide summary carried by a feed update.
func (pp *PrettyPrint) Totals(s device.GlobalStats, active int) {
	pp.keyValues(
		[2]string{"Active", strconv.Itoa(active)},
		[2]string{"Up", rate(s.TotalUp) + " KB/s"},
		[2]string{"Down", rate(s.TotalDown) + " KB/s"},
		[2]string{"Kill switch", onOff(s.KillSwitch)},
	)
}

func (pp *PrettyPrint) Stats(s control.Stats) {
	pp.Title("Network")
	pp.Totals(device.GlobalStats{TotalUp: s.TotalUp, TotalDown: s.TotalDown, KillSwitch: s.KillSwitch}, s.ActiveDevices)
}

func (pp *PrettyPrint) Settings(v control.SettingsView) {
	pp.Title("System config")
	ifaces := make([]string, 0, len(v.Interfaces))
	for _, i := range v.Interfaces {
		if i == v.Settings.Interface {
			i = color.New(color.Bold).Sprint(i)
		}
		ifaces = append(ifaces, i)
	}
	rows := [][2]string{
		{"Interface", v.Settings.Interface},
		{"Scan interval", strconv.Itoa(v.Settings.ScanInterval) + "s"},
		{"Paranoid mode", onOff(v.Settings.ParanoidMode)},
	}
	if v.Settings.DomainLogLimit > 0 {
		rows = append(rows, [2]string{"Domain log limit", strconv.Itoa(v.Settings.DomainLogLimit)})
	}
	if len(ifaces) > 0 {
		rows = append(rows, [2]string{"Available", strings.Join(ifaces, ", ")})
	}
	pp.keyValues(rows...)
}

func (pp *PrettyPrint) Preferences(p store.Preferences, path string) {
	pp.Title("Preferences")
	pp.keyValues(
		[2]string{"Active only", onOff(p.ActiveOnly)},
		[2]string{"Event log", onOff(p.ShowEvents)},
		[2]string{"Stored in", path},
	)
}

func (pp *PrettyPrint) keyValues(rows ...[2]string) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, r := range rows {
		tbl.AddRow(bold.Sprint(r[0]), r[1])
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// JSON writes v as indented JSON.
func (pp *PrettyPrint) JSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(pp.out(), string(b))
	return err
}

func rate(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
