package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <session-id>",
		Short: "Dump everything persisted for one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			wb, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer wb.Close(ctx)

			data, err := wb.SessionData(ctx, args[0])
			if err != nil {
				return err
			}

			s := data.Session
			fmt.Printf("session %s  room=%s participant=%s status=%s\n", s.ID, s.RoomID, s.ParticipantID, s.Status)
			if s.DurationSeconds != nil {
				fmt.Printf("duration: %d seconds\n", *s.DurationSeconds)
			}

			if data.LatestState != nil {
				st := data.LatestState
				fmt.Printf("\nlatest state:\n")
				fmt.Printf("  customer: %s  phone: %s  dob: %s\n", st.CustomerName, st.CustomerPhone, st.DateOfBirth)
				fmt.Printf("  booking:  %s  reason: %s\n", st.BookingDateTime, st.BookingReason)
				fmt.Printf("  patient:  %s  intent: %s\n", st.PatientID, st.Intent)
			}

			fmt.Printf("\ntranscripts (%d):\n", len(data.Transcripts))
			for _, entry := range data.Transcripts {
				fmt.Printf("  %s [%s/%s] %s\n",
					entry.Timestamp.Format("15:04:05"), entry.AgentName, entry.Role, entry.Content)
			}

			fmt.Printf("\nmetrics (%d):\n", len(data.Metrics))
			for _, m := range data.Metrics {
				fmt.Printf("  %s %s=%g %s\n", m.Timestamp.Format("15:04:05"), m.Name, m.Value, m.Unit)
			}

			fmt.Printf("\ntransfers (%d):\n", len(data.Transfers))
			for _, tr := range data.Transfers {
				fmt.Printf("  %s %s -> %s (%s)\n",
					tr.Timestamp.Format("15:04:05"), tr.FromAgent, tr.ToAgent, tr.Reason)
			}
			return nil
		},
	}
	return cmd
}
