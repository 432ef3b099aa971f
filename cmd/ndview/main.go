package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kvanlaer/ndview/internal/annotate"
	"github.com/kvanlaer/ndview/internal/config"
	"github.com/kvanlaer/ndview/internal/control"
	"github.com/kvanlaer/ndview/internal/plugins"
	"github.com/kvanlaer/ndview/internal/reader"
	"github.com/kvanlaer/ndview/internal/store"
	"github.com/kvanlaer/ndview/internal/tui"
	"github.com/kvanlaer/ndview/internal/view"
)

var (
	dataDir     string
	configFile  string
	readerName  string
	featuresCSV string
	sessionName string
	withExample bool
	playFPS     float64
	noAutoscale bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ndview [path]",
		Short: "interactive viewer for multidimensional image sequences",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runViewer,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ndview", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml)")
	rootCmd.Flags().StringVar(&readerName, "reader", "", "reader to use (default: detect from path)")
	rootCmd.Flags().StringVar(&featuresCSV, "features", "", "feature CSV to overlay read-only")
	rootCmd.Flags().StringVar(&sessionName, "session", "", "annotation session name (default: derived from path)")
	rootCmd.Flags().BoolVar(&withExample, "example-plugins", false, "compose the noise and gamma filter plugins")
	rootCmd.Flags().Float64Var(&playFPS, "fps", 0, "playback frame rate (default: from config)")
	rootCmd.Flags().BoolVar(&noAutoscale, "no-autoscale", false, "disable intensity autoscaling")

	readersCmd := &cobra.Command{
		Use:   "readers",
		Short: "list registered readers",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, name := range reader.NewRegistry().List() {
				fmt.Fprintf(w, "%s\n", name)
			}
			w.Flush()
		},
	}

	featuresCmd := &cobra.Command{
		Use:   "features",
		Short: "manage stored annotation sessions",
	}
	featuresCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "list stored sessions",
			RunE: func(cmd *cobra.Command, args []string) error {
				sessions, err := store.New(dataDir).Sessions()
				if err != nil {
					return err
				}
				for _, s := range sessions {
					fmt.Println(s)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "export [session]",
			Short: "export a session to CSV",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st := store.New(dataDir)
				t, err := st.LoadTable(args[0])
				if err != nil {
					return err
				}
				path, err := st.ExportFeatureCSV(args[0], t)
				if err != nil {
					return err
				}
				fmt.Printf("exported %d features to %s\n", t.Len(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "import [session] [csv]",
			Short: "import a CSV into a session",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				t, err := annotate.ImportCSV(f)
				var imp *annotate.ImportError
				if err != nil {
					var ok bool
					if imp, ok = err.(*annotate.ImportError); !ok {
						return err
					}
				}
				st := store.New(dataDir)
				if err := st.Init(); err != nil {
					return err
				}
				if err := st.SaveTable(args[0], t); err != nil {
					return err
				}
				fmt.Printf("imported %d features into session %s\n", t.Len(), args[0])
				if imp != nil {
					fmt.Printf("warning: %v\n", imp)
				}
				return nil
			},
		},
	)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage the config file",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "ndview.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	})

	rootCmd.AddCommand(readersCmd, featuresCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if playFPS > 0 {
		cfg.Play.FPS = playFPS
	}
	if noAutoscale {
		cfg.View.Autoscale = false
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	registry := reader.NewRegistry()
	name := readerName
	if name == "" {
		name, path, err = registry.Detect(path)
		if err != nil {
			return err
		}
	}
	rd, err := registry.Open(name, path)
	if err != nil {
		return err
	}

	session := sessionName
	if session == "" {
		session = sessionFor(name, path)
	}
	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	table, err := st.LoadTable(session)
	if err != nil {
		return err
	}

	v, err := view.New(rd, view.Options{
		Debounce: cfg.Debounce(),
		PlayFPS:  cfg.Play.FPS,
	})
	if err != nil {
		rd.Close()
		return err
	}

	var composed []view.Plugin
	if withExample {
		composed = append(composed, plugins.NewNoise(), plugins.NewGamma())
	}
	if featuresCSV != "" {
		f, err := os.Open(featuresCSV)
		if err != nil {
			return err
		}
		imported, err := annotate.ImportCSV(f)
		f.Close()
		if err != nil {
			if _, ok := err.(*annotate.ImportError); !ok {
				return err
			}
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		composed = append(composed, plugins.NewAnnotate(imported))
	}
	sel := plugins.NewSelection(table, cfg.Annotate.HitRadius)
	composed = append(composed, sel)
	v.Compose(composed...)

	var controls []*control.Control
	for _, p := range composed {
		if owner, ok := p.(view.ControlOwner); ok {
			controls = append(controls, owner.Controls()...)
		}
	}

	title := name
	if path != "" {
		title = fmt.Sprintf("%s (%s)", filepath.Base(path), name)
	}
	model := tui.NewModel(v, sel, controls, dataDir, title, cfg.View.Autoscale)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	v.SetTarget(tui.NewTarget(p))

	go func() {
		for err := range v.Errors() {
			p.Send(tui.ErrMsg{Err: err})
		}
	}()

	_, runErr := p.Run()

	outputs, closeErr := v.Close()
	for _, out := range outputs {
		t, ok := out.(*annotate.Table)
		if !ok || t != table {
			continue
		}
		if err := st.SaveTable(session, t); err != nil {
			return err
		}
		csvPath, err := st.ExportFeatureCSV(session, t)
		if err != nil {
			return err
		}
		fmt.Printf("saved %d features to session %s (%s)\n", t.Len(), session, csvPath)
	}

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// sessionFor derives a stable session name from the reader and path so
// reopening the same sequence restores its annotations.
func sessionFor(readerName, path string) string {
	if path == "" {
		return readerName
	}
	base := filepath.Base(filepath.Clean(path))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	return base
}
