package cli

import (
	"github.com/jrsteele09/academy-admin/internal/config"
	"github.com/jrsteele09/academy-admin/internal/logging"
	"github.com/spf13/cobra"
)

// Execute runs academyctl with the process arguments.
func Execute(cfg config.Config) error {
	return NewRootCommand(cfg).Execute()
}

func NewRootCommand(cfg config.Config, opts ...AppOption) *cobra.Command {
	a := newApp(cfg, opts...)

	root := &cobra.Command{
		Use:   "academyctl",
		Short: "Admin client for the sports academy backend",
		Long: `academyctl manages students, coaches, tournaments and the rest of the academy
catalogue. Only admin accounts can log in.

Environment Variables:
  ACADEMY_API_URL                 Backend API URL (default: http://localhost:5000/api/v1)
  ACADEMY_CREDENTIALS_FILE        Where the session is kept (default: ~/.academy-admin/credentials.json)
  ACADEMY_CREDENTIALS_PASSPHRASE  Encrypts the credentials file when set`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(a.logLevel, cfg.GetEnv())
			return newPrinter(cmd.OutOrStdout(), a.output).validate()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			displayAppname(cmd.OutOrStdout(), cfg.GetAppName())
			_ = cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "Backend API URL (overrides ACADEMY_API_URL)")
	flags.StringVar(&a.credentialsFile, "credentials", "", "Credentials file (overrides ACADEMY_CREDENTIALS_FILE)")
	flags.StringVarP(&a.output, "output", "o", "json", "Output format: json or yaml")
	flags.StringVar(&a.logLevel, "log-level", cfg.GetLogLevel(), "Log level: debug, info, warn or error")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.watchCmd(),
		a.dashboardCmd(),
		a.imagesCmd(),
		a.devserverCmd(),
	)
	root.AddCommand(a.resourceCmds()...)
	return root
}
