package server

// chatPageHTML is the built-in browser client: a single page that talks
// to /ws using the tagged-JSON frames.
const chatPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Agentic Chat</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
       background: #667eea; height: 100vh; margin: 0;
       display: flex; justify-content: center; align-items: center; }
.chat { width: 720px; height: 560px; background: #fff; border-radius: 12px;
        display: flex; flex-direction: column; overflow: hidden; }
.header { background: #4a5568; color: #fff; padding: 16px; text-align: center; font-weight: 600; }
.messages { flex: 1; padding: 16px; overflow-y: auto; background: #f7fafc; }
.msg { margin-bottom: 12px; white-space: pre-wrap; line-height: 1.5; font-size: 14px; }
.msg.user { text-align: right; color: #2b6cb0; }
.input { display: flex; border-top: 1px solid #e2e8f0; }
.input input { flex: 1; border: 0; padding: 14px; font-size: 14px; outline: none; }
.input button { border: 0; background: #4a5568; color: #fff; padding: 0 24px; cursor: pointer; }
</style>
</head>
<body>
<div class="chat">
  <div class="header">🤖 Agentic Chat</div>
  <div class="messages" id="messages"></div>
  <div class="input">
    <input id="text" placeholder="Type a message..." autofocus>
    <button onclick="send()">Send</button>
  </div>
</div>
<script>
const messages = document.getElementById('messages');
const input = document.getElementById('text');
const ws = new WebSocket('ws://' + location.host + '/ws');

function add(text, cls) {
  const div = document.createElement('div');
  div.className = 'msg ' + cls;
  div.textContent = text;
  messages.appendChild(div);
  messages.scrollTop = messages.scrollHeight;
}

ws.onmessage = (ev) => {
  const frame = JSON.parse(ev.data);
  if (frame.type === 'response') {
    add(frame.data.response, 'bot');
  } else if (frame.type === 'error') {
    add('⚠️ ' + frame.data.error, 'bot');
  }
};

function send() {
  const text = input.value.trim();
  if (!text) return;
  add(text, 'user');
  ws.send(JSON.stringify({type: 'chat', message: text}));
  input.value = '';
}

input.addEventListener('keydown', (ev) => { if (ev.key === 'Enter') send(); });
</script>
</body>
</html>
`
