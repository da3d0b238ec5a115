package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-screener/internal/roles"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List role profiles with their skills, minimum experience and threshold",
	Run: func(cmd *cobra.Command, _ []string) {
		config, err := getConfig()
		if err != nil {
			log.Fatalf("getting a config: %s", err)
		}

		registry, err := roles.Decode(config.Roles)
		if err != nil {
			log.Fatalf("loading role profiles: %s", err)
		}

		if viper.GetBool("json") {
			pretty, _ := json.MarshalIndent(registry.Profiles(), "", "  ")
			fmt.Println(string(pretty))
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ROLE\tTHRESHOLD\tMIN EXPERIENCE\tSKILLS")
		for _, p := range registry.Profiles() {
			fmt.Fprintf(w, "%s\t%g\t%d\t%s\n", p.Name, p.Threshold, p.MinExperience, strings.Join(p.Skills, ", "))
		}
		w.Flush()

		fmt.Printf("\nlocations: %s\n", strings.Join(roles.Locations(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
