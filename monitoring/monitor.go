package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/ps2sim/datarecording"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/monitoring/web"
	"github.com/sarchlab/ps2sim/system"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"
)

// Monitor turns an emulation session into a web server that allows external
// inspection and control.
type Monitor struct {
	runner     *system.Runner
	components []system.Named
	portNumber int
	log        *logrus.Entry
	traces     *datarecording.Reader

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	listener net.Listener
}

// NewMonitor creates a Monitor that controls the session through runner.
func NewMonitor(runner *system.Runner) *Monitor {
	return &Monitor{
		runner: runner,
		log:    logrus.NewEntry(logrus.New()).WithField("component", "monitor"),
	}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 select
// a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger of the monitor.
func (m *Monitor) WithLogger(log *logrus.Entry) *Monitor {
	m.log = log.WithField("component", "monitor")
	return m
}

// WithTraceReader serves the tables of the session's trace database.
func (m *Monitor) WithTraceReader(r *datarecording.Reader) *Monitor {
	m.traces = r
	return m
}

// RegisterComponent registers a component to be monitored.
func (m *Monitor) RegisterComponent(c system.Named) {
	m.components = append(m.components, c)
}

// RegisterSystem registers every component of the system.
func (m *Monitor) RegisterSystem(sys *system.System) {
	for _, c := range sys.Components() {
		m.RegisterComponent(c)
	}
}

// TrackFrames creates a progress bar that advances with each frame the
// system completes.
func (m *Monitor) TrackFrames(sys *system.System, total uint64) *ProgressBar {
	bar := m.CreateProgressBar("Frames", total)

	sys.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
		if ctx.Pos == system.HookPosFrame {
			bar.IncrementFinished(1)
		}
	}))

	return bar
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := NewProgressBar(name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.continueRun)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/api/trace", m.listTraceTables)
	r.HandleFunc("/api/trace/{table}", m.readTraceTable)
	r.PathPrefix("/").Handler(http.FileServer(web.Assets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", m.portNumber))
	if err != nil {
		return "", fmt.Errorf("starting monitor: %w", err)
	}

	m.listener = listener
	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring emulation with %s\n", url)

	go func() {
		err := http.Serve(listener, m.router())
		if err != nil && !strings.Contains(err.Error(), "use of closed") {
			m.log.WithError(err).Error("monitor server stopped")
		}
	}()

	return url, nil
}

// StopServer closes the listener of a started server.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	return m.listener.Close()
}

// OpenInBrowser opens the monitor page in the default browser.
func OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.runner.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueRun(w http.ResponseWriter, _ *http.Request) {
	m.runner.Continue()
	w.WriteHeader(http.StatusOK)
}

type nowRsp struct {
	Frame  uint64 `json:"frame"`
	Cycles uint64 `json:"cycles"`
	Paused bool   `json:"paused"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	rsp := nowRsp{Paused: m.runner.Paused()}

	m.runner.Inspect(func(s *system.System) {
		rsp.Frame = s.Frame()
		rsp.Cycles = s.Cycles()
	})

	m.writeJSON(w, rsp)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	m.writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	var buf bytes.Buffer
	var err error

	m.runner.Inspect(func(*system.System) {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)
		err = serializer.Serialize(&buf)
	})

	if err != nil {
		m.fail(w, err)
		return
	}

	m.write(w, buf.Bytes())
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	var buf bytes.Buffer

	m.runner.Inspect(func(*system.System) {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)

		err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
		if err == nil {
			err = serializer.Serialize(&buf)
		}
	})

	if err != nil {
		m.fail(w, err)
		return
	}

	m.write(w, buf.Bytes())
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) system.Named {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	m.write(w, []byte("Component not found"))

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	views := make([]progressView, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		views = append(views, b.view())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, views)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.fail(w, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.fail(w, err)
		return
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		m.fail(w, err)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		m.fail(w, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.fail(w, err)
		return
	}

	m.writeJSON(w, prof)
}

type traceTable struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

func (m *Monitor) listTraceTables(w http.ResponseWriter, r *http.Request) {
	if m.traces == nil {
		http.Error(w, "no trace database", http.StatusNotFound)
		return
	}

	names, err := m.traces.Tables(r.Context())
	if err != nil {
		m.fail(w, err)
		return
	}

	tables := make([]traceTable, 0, len(names))

	for _, n := range names {
		page, err := m.traces.Read(r.Context(), n, datarecording.Page{Limit: 1})
		if err != nil {
			m.fail(w, err)
			return
		}

		tables = append(tables, traceTable{Name: n, Rows: page.Total})
	}

	m.writeJSON(w, tables)
}

// readTraceTable serves one page of a table. The limit and offset query
// parameters select the page; 100 rows are returned by default.
func (m *Monitor) readTraceTable(w http.ResponseWriter, r *http.Request) {
	if m.traces == nil {
		http.Error(w, "no trace database", http.StatusNotFound)
		return
	}

	page := datarecording.Page{Limit: 100}
	q := r.URL.Query()

	for key, dst := range map[string]*int{
		"limit":  &page.Limit,
		"offset": &page.Offset,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad "+key, http.StatusBadRequest)
			return
		}

		*dst = n
	}

	rows, err := m.traces.Read(r.Context(), mux.Vars(r)["table"], page)
	if errors.Is(err, datarecording.ErrNoTable) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err != nil {
		m.fail(w, err)
		return
	}

	m.writeJSON(w, rows)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		m.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	m.write(w, b)
}

func (m *Monitor) write(w http.ResponseWriter, b []byte) {
	if _, err := w.Write(b); err != nil {
		m.log.WithError(err).Warn("writing response")
	}
}

func (m *Monitor) fail(w http.ResponseWriter, err error) {
	m.log.WithError(err).Error("monitor request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
