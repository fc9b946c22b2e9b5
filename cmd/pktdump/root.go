package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arjunmenon/pktlayers/pkg/common"
	"github.com/arjunmenon/pktlayers/pkg/ipstack"
)

var (
	inputFormat string
	strict      bool
	hexdump     bool
	logLevel    string

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "pktdump [packet]",
	Short: "Decode a single packet and print its layer chain",
	Long: `pktdump decodes one Ethernet frame, read either from a
positional argument or from stdin, and prints each layer pktlayers
recognized.

By default it uses the lax walk, which degrades to best-effort slicing
instead of failing outright. --strict switches to the strict walk,
which stops and returns an error at the first inconsistency.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("bad --log-level: %w", err)
		}
		log.SetLevel(level)
		return nil
	},
	RunE: runDump,
}

func init() {
	rootCmd.Flags().StringVar(&inputFormat, "format", "hex", "input encoding: hex or base64")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "use the strict walk instead of the lax walk")
	rootCmd.Flags().BoolVar(&hexdump, "hexdump", false, "print a hex dump of the decoded input before the layer chain")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warning", "logrus level: debug, info, warning, error")
}

func runDump(cmd *cobra.Command, args []string) error {
	var raw string
	if len(args) == 1 {
		raw = args[0]
	} else {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		raw = string(b)
	}
	raw = strings.TrimSpace(raw)

	data, err := decodeInput(raw, inputFormat)
	if err != nil {
		return err
	}
	log.Debugf("decoded %d bytes of input", len(data))

	if hexdump {
		fmt.Fprint(cmd.OutOrStdout(), common.HexDump(data))
	}

	if strict {
		got, err := ipstack.FromEthernetSlice(data)
		if err != nil {
			return fmt.Errorf("strict walk: %w", err)
		}
		printPacketHeaders(cmd.OutOrStdout(), got)
		return nil
	}

	got, err := ipstack.LaxFromEthernetSliceWithOptions(data, ipstack.LaxWalkOptions{Logger: log})
	if err != nil {
		return fmt.Errorf("lax walk: %w", err)
	}
	printPacketHeaders(cmd.OutOrStdout(), &got.PacketHeaders)
	if got.StopErr != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "stopped at %s: %v\n", got.StopLayer, got.StopErr)
	}
	if got.Incomplete {
		fmt.Fprintln(cmd.OutOrStdout(), "payload range was truncated against the buffer")
	}
	return nil
}

func decodeInput(raw, format string) ([]byte, error) {
	switch format {
	case "hex":
		raw = strings.ReplaceAll(raw, " ", "")
		raw = strings.ReplaceAll(raw, ":", "")
		data, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decode hex: %w", err)
		}
		return data, nil
	case "base64":
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown --format %q, want hex or base64", format)
	}
}

func printPacketHeaders(w io.Writer, got *ipstack.PacketHeaders) {
	if got.Link != nil {
		fmt.Fprintf(w, "%s\n", got.Link)
	}
	for _, ext := range got.LinkExtensions {
		switch ext.Kind {
		case ipstack.LinkExtensionVlan:
			fmt.Fprintf(w, "%s\n", ext.Vlan)
		case ipstack.LinkExtensionMacSec:
			fmt.Fprintf(w, "%s\n", ext.MacSec)
		}
	}
	if got.Net != nil {
		switch {
		case got.Net.Ipv4 != nil:
			fmt.Fprintf(w, "%s\n", got.Net.Ipv4.Header)
		case got.Net.Ipv6 != nil:
			fmt.Fprintf(w, "%s\n", got.Net.Ipv6.Header)
			for _, ext := range got.Net.Ipv6.Extensions {
				switch {
				case ext.Fragment != nil:
					fmt.Fprintf(w, "  %s\n", ext.Fragment)
				case ext.Auth != nil:
					fmt.Fprintf(w, "  %s\n", ext.Auth)
				case ext.Generic != nil:
					fmt.Fprintf(w, "  %s\n", ext.Generic)
				}
			}
		case got.Net.Arp != nil:
			fmt.Fprintf(w, "%s\n", got.Net.Arp)
		}
	}
	if got.Transport != nil {
		switch got.Transport.Kind {
		case ipstack.TransportUdp:
			fmt.Fprintf(w, "%s\n", got.Transport.Udp)
		case ipstack.TransportTcp:
			fmt.Fprintf(w, "%s\n", got.Transport.Tcp)
		case ipstack.TransportIcmpv4:
			fmt.Fprintf(w, "%s\n", got.Transport.Icmpv4)
		case ipstack.TransportIcmpv6:
			fmt.Fprintf(w, "%s\n", got.Transport.Icmpv6)
		}
	}
	fmt.Fprintf(w, "payload: %d bytes (%s)\n", len(got.Payload.Data), payloadKindName(got.Payload.Kind))
}

func payloadKindName(k ipstack.PayloadKind) string {
	switch k {
	case ipstack.PayloadEther:
		return "unrecognized ether payload"
	case ipstack.PayloadIp:
		return "ip payload, no transport decode"
	case ipstack.PayloadUdp:
		return "udp"
	case ipstack.PayloadTcp:
		return "tcp"
	case ipstack.PayloadIcmpv4:
		return "icmpv4"
	case ipstack.PayloadIcmpv6:
		return "icmpv6"
	case ipstack.PayloadEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
