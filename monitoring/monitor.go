// Package monitoring turns a simulation into a server and allows external
// monitoring and controlling of the simulation while it runs.
package monitoring

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"

	"github.com/simlab-dev/desmat/sim"
)

// Monitor exposes a running scheduler over HTTP: the current simulated
// time, the queue depth, the process states, and pause/continue control.
type Monitor struct {
	scheduler  *sim.Scheduler
	portNumber int

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterScheduler registers the scheduler that drives the simulation.
func (m *Monitor) RegisterScheduler(s *sim.Scheduler) {
	m.scheduler = s
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a finished bar.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars)-1)
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router builds the HTTP routes the monitor serves.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/pause", m.pauseScheduler)
	r.HandleFunc("/api/continue", m.continueScheduler)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/queue", m.queue)
	r.HandleFunc("/api/processes", m.listProcesses)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	return r
}

// StartServer starts the monitor as a web server, on the configured port or
// a random free one.
func (m *Monitor) StartServer() {
	r := m.Router()

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(
		os.Stderr,
		"Monitoring simulation with http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()
}

func (m *Monitor) pauseScheduler(w http.ResponseWriter, _ *http.Request) {
	m.scheduler.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueScheduler(w http.ResponseWriter, _ *http.Request) {
	m.scheduler.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.scheduler.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) queue(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"len\":%d}", m.scheduler.QueueLen())
}

func (m *Monitor) listProcesses(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, p := range m.scheduler.Processes() {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "{\"name\":\"%s\",\"state\":\"%s\",\"alive\":%t}",
			p.Name(), p.State(), p.IsAlive())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	fmt.Fprint(w, "[")
	for i, b := range m.progressBars {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w,
			"{\"id\":\"%s\",\"name\":\"%s\",\"total\":%d,\"finished\":%d}",
			b.ID, b.Name, b.Total, b.Finished)
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.WriteHeader(500)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		w.WriteHeader(500)
		return
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		w.WriteHeader(500)
		return
	}

	fmt.Fprintf(w, "{\"cpu_percent\":%.4f,\"memory_rss\":%d}",
		cpuPercent, memInfo.RSS)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
