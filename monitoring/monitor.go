// Package monitoring turns a running flight computer into a small web
// server for ground-side observation. It is meant for bench and simulation
// runs; nothing in the decision core depends on it.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/machine"
	"github.com/openavionics/flightcore/timing"
)

// Monitor serves the machine's progress and the loaded state graph over
// HTTP. The handlers only read the Tracker snapshot and the immutable graph,
// so they never contend with the execution goroutine.
type Monitor struct {
	graph      *machine.Graph
	tracker    *Tracker
	time       timing.TimeTeller
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor(g *machine.Graph, t *Tracker, tt timing.TimeTeller) *Monitor {
	return &Monitor{
		graph:   g,
		tracker: t,
		time:    tt,
	}
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

// StartServer starts the monitor as a web server with a custom port if
// wanted. It returns the port actually bound.
func (m *Monitor) StartServer() int {
	r := m.router()

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(os.Stderr,
		"Monitoring flight computer with http://localhost:%d\n", port)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	return port
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/graph", m.describeGraph)
	r.HandleFunc("/api/resource", m.listResources)

	return r
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%.6f}", float64(m.time.CurrentTime()))
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.tracker.Status())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type checkRsp struct {
	Data       string `json:"data"`
	Transition string `json:"transition,omitempty"`
}

type commandRsp struct {
	Value  string  `json:"value"`
	DelayS float64 `json:"delay_s"`
}

type timeoutRsp struct {
	AfterS     float64 `json:"after_s"`
	Transition string  `json:"transition"`
}

type stateRsp struct {
	ID       uint8        `json:"id"`
	Checks   []checkRsp   `json:"checks,omitempty"`
	Commands []commandRsp `json:"commands,omitempty"`
	Timeout  *timeoutRsp  `json:"timeout,omitempty"`
}

type graphRsp struct {
	DefaultState uint8      `json:"default_state"`
	States       []stateRsp `json:"states"`
}

func (m *Monitor) describeGraph(w http.ResponseWriter, _ *http.Request) {
	rsp := graphRsp{DefaultState: m.graph.Default.ID}

	for _, s := range m.graph.States {
		rsp.States = append(rsp.States, describeState(s))
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func describeState(s *machine.State) stateRsp {
	rsp := stateRsp{ID: s.ID}

	s.Checks.Each(func(c **machine.Check) {
		rsp.Checks = append(rsp.Checks, checkRsp{
			Data:       (*c).Data.String(),
			Transition: describeTransition((*c).Transition),
		})
	})

	s.Commands.Each(func(c **machine.Command) {
		rsp.Commands = append(rsp.Commands, commandRsp{
			Value:  (*c).Value.String(),
			DelayS: float64((*c).Delay),
		})
	})

	if t := s.Timeout(); t != nil {
		rsp.Timeout = &timeoutRsp{
			AfterS:     float64(t.Duration),
			Transition: describeTransition(&t.Transition),
		}
	}

	return rsp
}

func describeTransition(t *machine.Transition) string {
	if t == nil {
		return ""
	}

	if t.Kind == config.TransitionAbort {
		return fmt.Sprintf("abort to state %d", t.Target.ID)
	}

	return fmt.Sprintf("to state %d", t.Target.ID)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
