package main

import (
	"errors"

	"github.com/spf13/cobra"

	"outage-checker/internal/logger"
	"outage-checker/internal/models"
	"outage-checker/internal/notify"
	"outage-checker/internal/outage"
)

func newNotifyCmd(e *env) *cobra.Command {
	var chatID int64
	cmd := &cobra.Command{
		Use:   "notify [ADDRESS]",
		Short: "Send the schedule for an address to a Telegram chat",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.BotToken == "" {
				return errors.New("BOT_TOKEN is not set")
			}
			addr, ok, err := e.addressArg(args)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no address given and no default address configured")
			}

			ctx := cmd.Context()
			var (
				days    []models.DaySchedule
				updated string
			)
			err = outage.WithClient(e.options("notify"), func(c *outage.Client) error {
				var err error
				if days, err = c.GetScheduleForAddress(ctx, addr); err != nil {
					return err
				}
				page, err := c.FetchSchedulePage(ctx)
				if err != nil {
					return err
				}
				updated = page.Schedule.UpdateTime
				return nil
			})
			if err != nil {
				return err
			}

			bot, err := notify.NewBot(e.cfg.BotToken)
			if err != nil {
				return err
			}
			n := notify.NewNotifier(bot, logger.New("notify"))
			if err := n.SendSchedule(chatID, addr, days, updated); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Schedule for %s sent to chat %d\n", addr, chatID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&chatID, "chat", 0, "Telegram chat or channel ID")
	_ = cmd.MarkFlagRequired("chat")
	return cmd
}
