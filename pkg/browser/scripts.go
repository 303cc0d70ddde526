package browser

// Page scripts. Each takes a single argument so it can be passed straight
// to Page.Evaluate.

// listEntriesScript returns [{title, active}] for every lesson entry.
// arg: [entrySelector, activeSelector, titleSelector]
const listEntriesScript = `([entrySel, activeSel, titleSel]) => {
  const active = document.querySelector(activeSel);
  return Array.from(document.querySelectorAll(entrySel)).map((el) => {
    const title = el.querySelector(titleSel);
    return {
      title: ((title ? title.textContent : el.textContent) || '').trim(),
      active: el === active,
    };
  });
}`

// playerStateScript reports the global player's presence and paused flag.
// arg: player global name
const playerStateScript = `(name) => {
  const player = window[name];
  if (!player) return { present: false, paused: false };
  return { present: true, paused: !!player.paused };
}`

// playScript starts the player and resolves once playback has begun. A
// positive timeout rejects a play promise that has not settled by then.
// arg: [player global name, timeout in ms]
const playScript = `async ([name, timeout]) => {
  const player = window[name];
  if (!player) throw new Error('player ' + name + ' not found');
  const play = Promise.resolve(player.play());
  if (!(timeout > 0)) {
    await play;
    return true;
  }
  let timer;
  const expired = new Promise((_, reject) => {
    timer = setTimeout(() => reject(new Error('play did not settle within ' + timeout + 'ms')), timeout);
  });
  try {
    await Promise.race([play, expired]);
  } finally {
    clearTimeout(timer);
  }
  return true;
}`

// showOverlayScript creates the status panel on first use and replaces its
// content. It reports false while the document has no body yet.
// arg: [id, cssText, markup]
const showOverlayScript = `([id, style, markup]) => {
  let panel = document.getElementById(id);
  if (!panel) {
    if (!document.body) return false;
    panel = document.createElement('div');
    panel.id = id;
    panel.style.cssText = style;
    document.body.appendChild(panel);
  }
  panel.innerHTML = markup;
  return true;
}`

// removeOverlayScript deletes the status panel.
// arg: id
const removeOverlayScript = `(id) => {
  const panel = document.getElementById(id);
  if (panel && panel.parentNode) panel.parentNode.removeChild(panel);
}`
