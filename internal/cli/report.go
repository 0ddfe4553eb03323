package cli

import (
	"fmt"

	"github.com/fatih/color"
)

// PrintStatus writes the launched stacks and their services
func PrintStatus(app *AppContext, stacks []StackStatus) {
	app.UI.Header("Stack Status")

	if len(stacks) == 0 {
		app.UI.Info("No launched stacks")
		app.UI.Info("Launch one with: madara-cli create")
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, st := range stacks {
		app.UI.Section(st.Mode.DisplayName(), st.Manifest)
		if st.Err != nil {
			app.UI.Warningf("Cannot read manifest: %v", st.Err)
			continue
		}
		for _, svc := range st.Services {
			state := ""
			if st.Probed {
				if svc.Running {
					state = green.Sprint("running")
				} else {
					state = red.Sprint("stopped")
				}
			}
			app.UI.Printf("  %-14s %-48s %s", svc.Name, svc.Image, state)
		}
	}

	app.UI.Print("")
	app.UI.Separator()
	app.UI.Infof("Launched stacks: %d", len(stacks))
	app.UI.Infof("Marker directory: %s", app.Markers.Dir())
}

// PrintChecks writes doctor results grouped by section. It returns the number
// of failed checks.
func PrintChecks(app *AppContext, checks []Check) int {
	failed := 0
	group := ""
	for _, c := range checks {
		if c.Group != group {
			group = c.Group
			app.UI.Header(group)
		}
		line := fmt.Sprintf("%s: %s", c.Name, c.Detail)
		switch c.Status {
		case CheckOK:
			app.UI.Success(line)
		case CheckWarn:
			app.UI.Warning(line)
		default:
			app.UI.Error(line)
			failed++
		}
	}

	app.UI.Print("")
	app.UI.Separator()
	if failed > 0 {
		app.UI.Errorf("%d check(s) failed", failed)
	} else {
		app.UI.Success("All checks passed")
	}
	app.UI.Info("For container logs, use:")
	app.UI.Info("  docker logs <container-name>")
	return failed
}
