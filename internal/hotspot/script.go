package hotspot

import (
	"strconv"
	"strings"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/netadapter"
)

// TetheringState mirrors Windows.Networking.NetworkOperators.TetheringOperationalState.
type TetheringState int

const (
	TetheringOff          TetheringState = 0
	TetheringOn           TetheringState = 1
	TetheringInTransition TetheringState = 2
	TetheringUnknown      TetheringState = 3
)

func (s TetheringState) String() string {
	switch s {
	case TetheringOff:
		return "off"
	case TetheringOn:
		return "on"
	case TetheringInTransition:
		return "in transition"
	case TetheringUnknown:
		return "unknown"
	}
	return "state " + strconv.Itoa(int(s))
}

type scriptKind int

const (
	scriptQuery scriptKind = iota
	scriptEnable
	scriptDisable
)

// Polling window inside the script, in milliseconds.
const (
	tetheringWaitMillis = 30000
	tetheringPollMillis = 300
)

const scriptPrelude = "$ErrorActionPreference='Stop';" +
	"Add-Type -AssemblyName System.Runtime.WindowsRuntime;" +
	"$t=[Windows.Networking.NetworkOperators.NetworkOperatorTetheringManager,Windows.Networking.NetworkOperators,ContentType=WindowsRuntime];"

// Picks the connection profile of the bound adapter, else the internet
// profile, else the first profile.
const scriptResolveProfile = "$p=[Windows.Networking.Connectivity.NetworkInformation]::GetInternetConnectionProfile();" +
	"if($p -eq $null -or $p.NetworkAdapter -eq $null -or ($targetGuid -ne '' -and $p.NetworkAdapter.NetworkAdapterId.ToString() -ine $targetGuid)){" +
	"$profiles=[Windows.Networking.Connectivity.NetworkInformation]::GetConnectionProfiles();" +
	"$bound=$null;" +
	"if($targetGuid -ne ''){ $bound=$profiles | Where-Object { $_.NetworkAdapter -ne $null -and $_.NetworkAdapter.NetworkAdapterId.ToString() -ieq $targetGuid } | Select-Object -First 1 };" +
	"if($bound -ne $null){ $p=$bound } elseif($p -eq $null -or $p.NetworkAdapter -eq $null){ $p=$profiles | Select-Object -First 1 }" +
	"};" +
	"if($p -eq $null){ throw 'No connection profile.' };" +
	"$m=$t::CreateFromConnectionProfile($p);"

// buildTetheringScript renders the PowerShell program for one operation.
func buildTetheringScript(kind scriptKind, adapterID, ssid, passphrase string) string {
	var b strings.Builder
	b.WriteString(scriptPrelude)
	b.WriteString("$targetGuid='" + psQuote(netadapter.NormalizeID(adapterID)) + "';")

	if kind == scriptEnable {
		b.WriteString("$ssid='" + psQuote(ssid) + "';")
		b.WriteString("$key='" + psQuote(passphrase) + "';")
	}
	b.WriteString(scriptResolveProfile)

	switch kind {
	case scriptQuery:
		b.WriteString("[int]$m.TetheringOperationalState")
		return b.String()

	case scriptEnable:
		b.WriteString("try { $c=$m.GetCurrentAccessPointConfiguration(); " +
			"if($ssid -ne ''){ $c.Ssid=$ssid }; if($key -ne ''){ $c.Passphrase=$key }; " +
			"$null=$m.ConfigureAccessPointAsync($c) } catch { };")
		b.WriteString("$null=$m.StartTetheringAsync();")

	case scriptDisable:
		b.WriteString("$state0=[int]$m.TetheringOperationalState;")
		b.WriteString("if($state0 -eq 0){ return };")
		b.WriteString("$null=$m.StopTetheringAsync();")
	}

	target, verb := "1", "start"
	if kind == scriptDisable {
		target, verb = "0", "stop"
	}
	b.WriteString("$sw=[Diagnostics.Stopwatch]::StartNew();")
	b.WriteString("while($sw.ElapsedMilliseconds -lt " + strconv.Itoa(tetheringWaitMillis) + "){")
	b.WriteString("$state=[int]$m.TetheringOperationalState;")
	b.WriteString("if($state -eq " + target + "){ return };")
	b.WriteString("Start-Sleep -Milliseconds " + strconv.Itoa(tetheringPollMillis) + "};")
	b.WriteString("$state=[int]$m.TetheringOperationalState;")
	b.WriteString("throw ('Tethering " + verb + " timed out. OperationalState=' + $state)")
	return b.String()
}

// psQuote makes s safe inside a single-quoted PowerShell literal that is
// itself inside a double-quoted command line argument.
func psQuote(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	return strings.ReplaceAll(s, "'", "''")
}
