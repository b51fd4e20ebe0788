package cmd

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"countdown/internal/config"
	"countdown/internal/entitlement"
	"countdown/internal/events"
	"countdown/internal/logger"
	"countdown/internal/ui"
)

var proCmd = &cobra.Command{
	Use:   "pro",
	Short: "Manage the pro entitlement",
}

var proStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tier and check the stored receipt",
	RunE: func(cmd *cobra.Command, args []string) error {
		evs, s, err := loadAll(cmd.Context())
		if err != nil {
			return err
		}
		tier := "free"
		if s.IsPro {
			tier = ui.Render(ui.Gold, ui.IconStar+" pro")
		}
		fmt.Println(ui.LabelValue("Tier", tier))
		fmt.Println(ui.LabelValue("Active events", fmt.Sprintf("%d/%d", events.ActiveCount(evs), events.CapFor(s.IsPro))))

		ok, err := entitlement.IsPro(cfg.Entitlement.PublicKey, cfg.Entitlement.Receipt)
		switch {
		case err != nil:
			fmt.Println(ui.LabelValue("Receipt", ui.Render(ui.Bad, err.Error())))
		case ok:
			fmt.Println(ui.LabelValue("Receipt", ui.Render(ui.Good, "valid")))
			if !s.IsPro {
				if _, err := w.SetPro(cmd.Context(), true); err != nil {
					return err
				}
				fmt.Println(ui.Render(ui.Good, ui.IconStar+" Pro restored from receipt"))
			}
		default:
			fmt.Println(ui.LabelValue("Receipt", "none"))
		}
		return nil
	},
}

var proVerifyCmd = &cobra.Command{
	Use:   "verify <receipt>",
	Short: "Verify a receipt and unlock pro",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := entitlement.NewVerifier(cfg.Entitlement.PublicKey)
		if err != nil {
			return fmt.Errorf("%w (set entitlement.public_key or %s)", err, config.EnvPublicKey)
		}
		receipt := strings.TrimSpace(args[0])
		r, err := v.Verify(receipt)
		if err != nil {
			return err
		}
		cfg.Entitlement.Receipt = receipt
		path := configFile()
		if err := config.Save(path, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		if _, err := w.SetPro(cmd.Context(), true); err != nil {
			return err
		}
		logger.Info("receipt verified", "transaction", r.TransactionID)
		fmt.Printf("⭐ Pro unlocked (transaction %s, purchased %s)\n", r.TransactionID, r.PurchasedAt.In(loc).Format(dateLayout))
		return nil
	},
}

var proSetCmd = &cobra.Command{
	Use:       "set <on|off>",
	Short:     "Force the pro flag",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch strings.ToLower(args[0]) {
		case "on", "true", "1":
			on = true
		case "off", "false", "0":
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}
		s, err := w.SetPro(cmd.Context(), on)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Pro: %v\n", s.IsPro)
		return nil
	},
}

var proKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a receipt signing key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, priv, err := entitlement.GenerateKey(rand.Reader)
		if err != nil {
			return err
		}
		fmt.Printf("public:  %s\nprivate: %s\n", pub, priv)
		return nil
	},
}

var (
	issueKey         string
	issueTransaction string
)

var proIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Sign a pro receipt with a private key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if issueKey == "" || issueTransaction == "" {
			return fmt.Errorf("--key and --transaction are required")
		}
		receipt, err := entitlement.Issue(entitlement.Receipt{
			ProductID:     entitlement.ProductID,
			TransactionID: issueTransaction,
			PurchasedAt:   time.Now().UTC().Truncate(time.Second),
		}, issueKey)
		if err != nil {
			return err
		}
		fmt.Println(receipt)
		return nil
	},
}

func init() {
	proIssueCmd.Flags().StringVar(&issueKey, "key", "", "Base64 private key from keygen")
	proIssueCmd.Flags().StringVar(&issueTransaction, "transaction", "", "Transaction id recorded in the receipt")
	proCmd.AddCommand(proStatusCmd, proVerifyCmd, proSetCmd, proKeygenCmd, proIssueCmd)
}
