package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/downd/fishingcv/bot/relay"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports and flag relay candidates",
	RunE:  runPorts,
}

var portsVID string

func init() {
	rootCmd.AddCommand(portsCmd)

	portsCmd.Flags().StringVar(&portsVID, "vid", relay.ArduinoVID, "USB vendor id to flag as relay")
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := relay.ListPorts(portsVID)
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	for _, p := range ports {
		marker := " "
		if p.IsRelay {
			marker = "*"
		}
		if p.IsUSB {
			fmt.Printf("%s %-20s USB %s:%s\n", marker, p.Name, p.VID, p.PID)
		} else {
			fmt.Printf("%s %-20s\n", marker, p.Name)
		}
	}
	return nil
}
