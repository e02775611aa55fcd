package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/nodewatch/pkg/control"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListDevicesTool(srv, svc)
	registerGetDeviceTool(srv, svc)
	registerSummaryTool(srv, svc)
	registerSetBlockTool(srv, svc)
	registerKillSwitchTool(srv, svc)
	registerScheduleTool(srv, svc)
	registerGetSettingsTool(srv, svc)
	registerUpdateSettingsTool(srv, svc)
}

func registerListDevicesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_devices",
		mcp.WithDescription("List devices on the network with their rates and block state."),
		mcp.WithBoolean("active_only",
			mcp.Description("Leave out stale devices that are no longer answering."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		devices, err := svc.ListDevices(ctx, request.GetBool("active_only", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"devices": devices, "count": len(devices)})
	})
}

func registerGetDeviceTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_device",
		mcp.WithDescription("Fetch one device by MAC address."),
		mcp.WithString("mac",
			mcp.Required(),
			mcp.Description("MAC address of the device."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mac, err := request.RequireString("mac")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.Device(ctx, mac)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSummaryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"network_summary",
		mcp.WithDescription("Report link state, device counts, total rates and the kill switch."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sum, err := svc.Summary(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(sum)
	})
}

func registerSetBlockTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_block",
		mcp.WithDescription("Block or unblock a device's network access."),
		mcp.WithString("mac",
			mcp.Required(),
			mcp.Description("MAC address of the device."),
		),
		mcp.WithBoolean("blocked",
			mcp.Required(),
			mcp.Description("True to block, false to restore access."),
		),
		mcp.WithDestructiveHintAnnotation(true),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			MAC     string `json:"mac"`
			Blocked bool   `json:"blocked"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		res, err := svc.SetBlock(ctx, args.MAC, args.Blocked)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func registerKillSwitchTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_kill_switch",
		mcp.WithDescription("Engage or release the network-wide kill switch."),
		mcp.WithBoolean("enabled",
			mcp.Required(),
			mcp.Description("True cuts every device off."),
		),
		mcp.WithDestructiveHintAnnotation(true),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		enabled, err := request.RequireBool("enabled")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := svc.SetKillSwitch(ctx, enabled)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func registerScheduleTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_schedule",
		mcp.WithDescription("Block a device every day between two times. A start after the end wraps past midnight. Pass empty start and end to remove the schedule."),
		mcp.WithString("mac",
			mcp.Required(),
			mcp.Description("MAC address of the device."),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start of the window, HH:MM, or empty to clear."),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End of the window, HH:MM, or empty to clear."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			MAC   string `json:"mac"`
			Start string `json:"start"`
			End   string `json:"end"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		res, err := svc.SetSchedule(ctx, args.MAC, args.Start, args.End)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func registerGetSettingsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_settings",
		mcp.WithDescription("Read the backend's scan settings and available interfaces."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view, err := svc.Settings(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(view)
	})
}

func registerUpdateSettingsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_settings",
		mcp.WithDescription("Change scan settings. Omitted fields are left as they are. The backend needs a restart to apply them."),
		mcp.WithString("interface",
			mcp.Description("Network interface to scan."),
		),
		mcp.WithNumber("scan_interval",
			mcp.Description("Seconds between scans."),
			mcp.Min(control.MinScanInterval),
			mcp.Max(control.MaxScanInterval),
		),
		mcp.WithBoolean("paranoid_mode",
			mcp.Description("Automatically block devices the first time they appear."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		update := settingsUpdateFrom(request)
		saved, err := svc.UpdateSettings(ctx, update)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(saved)
	})
}

// settingsUpdateFrom keeps absent arguments nil so they are not sent.
func settingsUpdateFrom(request mcp.CallToolRequest) control.SettingsUpdate {
	args := request.GetArguments()
	var u control.SettingsUpdate
	if _, ok := args["interface"]; ok {
		v := request.GetString("interface", "")
		u.Interface = &v
	}
	if _, ok := args["scan_interval"]; ok {
		v := request.GetInt("scan_interval", 0)
		u.ScanInterval = &v
	}
	if _, ok := args["paranoid_mode"]; ok {
		v := request.GetBool("paranoid_mode", false)
		u.ParanoidMode = &v
	}
	return u
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
